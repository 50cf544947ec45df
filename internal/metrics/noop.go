package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration() {}

// IncAlbumCacheHit is a no-op.
func (n *NoopRecorder) IncAlbumCacheHit() {}

// IncAlbumCacheMiss is a no-op.
func (n *NoopRecorder) IncAlbumCacheMiss() {}

// IncReviewCreated is a no-op.
func (n *NoopRecorder) IncReviewCreated() {}

// IncDiaryEntryCreated is a no-op.
func (n *NoopRecorder) IncDiaryEntryCreated() {}

// IncListCreated is a no-op.
func (n *NoopRecorder) IncListCreated() {}

// IncAlbumIngested is a no-op.
func (n *NoopRecorder) IncAlbumIngested(status string) {}

// ObserveIngestBatchSize is a no-op.
func (n *NoopRecorder) ObserveIngestBatchSize(size int) {}

// ObserveIngestBatchDuration is a no-op.
func (n *NoopRecorder) ObserveIngestBatchDuration(duration time.Duration) {}

// IncActivityEventPublished is a no-op.
func (n *NoopRecorder) IncActivityEventPublished(status string) {}

// IncActivityEventProcessed is a no-op.
func (n *NoopRecorder) IncActivityEventProcessed(status string) {}

// SetActivityQueueDepth is a no-op.
func (n *NoopRecorder) SetActivityQueueDepth(depth int64) {}
