// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncLogin(status string) // status: "success" or "failed"
	IncRegistration()

	// Album metrics
	IncAlbumCacheHit()
	IncAlbumCacheMiss()

	// Activity metrics
	IncReviewCreated()
	IncDiaryEntryCreated()
	IncListCreated()

	// Catalog ingest metrics
	IncAlbumIngested(status string) // status: "created", "skipped", "failed"
	ObserveIngestBatchSize(size int)
	ObserveIngestBatchDuration(duration time.Duration)

	// Activity event pipeline metrics
	IncActivityEventPublished(status string) // status: "success" or "dropped"
	IncActivityEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	SetActivityQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
