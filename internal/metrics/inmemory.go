package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginsSucceeded      uint64
	LoginsFailed         uint64
	Registrations        uint64
	AlbumCacheHits       uint64
	AlbumCacheMisses     uint64
	ReviewsCreated       uint64
	DiaryEntriesCreated  uint64
	ListsCreated         uint64
	AlbumsIngested       uint64
	AlbumsSkipped        uint64
	AlbumsFailed         uint64
	IngestBatchCount     uint64
	IngestBatchTotalSize uint64
	IngestBatchTotalNs   int64
	EventsPublished      uint64
	EventsDropped        uint64
	EventsProcessed      uint64
	EventsFailed         uint64
	EventsDeadLettered   uint64
	ActivityQueueDepth   int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginsSucceeded      uint64
	loginsFailed         uint64
	registrations        uint64
	albumCacheHits       uint64
	albumCacheMisses     uint64
	reviewsCreated       uint64
	diaryEntriesCreated  uint64
	listsCreated         uint64
	albumsIngested       uint64
	albumsSkipped        uint64
	albumsFailed         uint64
	ingestBatchCount     uint64
	ingestBatchTotalSize uint64
	ingestBatchTotalNs   int64
	eventsPublished      uint64
	eventsDropped        uint64
	eventsProcessed      uint64
	eventsFailed         uint64
	eventsDeadLettered   uint64
	activityQueueDepth   int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginsSucceeded:      atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:         atomic.LoadUint64(&m.loginsFailed),
		Registrations:        atomic.LoadUint64(&m.registrations),
		AlbumCacheHits:       atomic.LoadUint64(&m.albumCacheHits),
		AlbumCacheMisses:     atomic.LoadUint64(&m.albumCacheMisses),
		ReviewsCreated:       atomic.LoadUint64(&m.reviewsCreated),
		DiaryEntriesCreated:  atomic.LoadUint64(&m.diaryEntriesCreated),
		ListsCreated:         atomic.LoadUint64(&m.listsCreated),
		AlbumsIngested:       atomic.LoadUint64(&m.albumsIngested),
		AlbumsSkipped:        atomic.LoadUint64(&m.albumsSkipped),
		AlbumsFailed:         atomic.LoadUint64(&m.albumsFailed),
		IngestBatchCount:     atomic.LoadUint64(&m.ingestBatchCount),
		IngestBatchTotalSize: atomic.LoadUint64(&m.ingestBatchTotalSize),
		IngestBatchTotalNs:   atomic.LoadInt64(&m.ingestBatchTotalNs),
		EventsPublished:      atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:        atomic.LoadUint64(&m.eventsDropped),
		EventsProcessed:      atomic.LoadUint64(&m.eventsProcessed),
		EventsFailed:         atomic.LoadUint64(&m.eventsFailed),
		EventsDeadLettered:   atomic.LoadUint64(&m.eventsDeadLettered),
		ActivityQueueDepth:   atomic.LoadInt64(&m.activityQueueDepth),
	}
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncRegistration increments the registration counter.
func (m *InMemoryRecorder) IncRegistration() {
	atomic.AddUint64(&m.registrations, 1)
}

// IncAlbumCacheHit increments the album cache hit counter.
func (m *InMemoryRecorder) IncAlbumCacheHit() {
	atomic.AddUint64(&m.albumCacheHits, 1)
}

// IncAlbumCacheMiss increments the album cache miss counter.
func (m *InMemoryRecorder) IncAlbumCacheMiss() {
	atomic.AddUint64(&m.albumCacheMisses, 1)
}

// IncReviewCreated increments the review counter.
func (m *InMemoryRecorder) IncReviewCreated() {
	atomic.AddUint64(&m.reviewsCreated, 1)
}

// IncDiaryEntryCreated increments the diary entry counter.
func (m *InMemoryRecorder) IncDiaryEntryCreated() {
	atomic.AddUint64(&m.diaryEntriesCreated, 1)
}

// IncListCreated increments the list counter.
func (m *InMemoryRecorder) IncListCreated() {
	atomic.AddUint64(&m.listsCreated, 1)
}

// IncAlbumIngested counts a catalog ingest outcome.
func (m *InMemoryRecorder) IncAlbumIngested(status string) {
	switch status {
	case "created":
		atomic.AddUint64(&m.albumsIngested, 1)
	case "skipped":
		atomic.AddUint64(&m.albumsSkipped, 1)
	default:
		atomic.AddUint64(&m.albumsFailed, 1)
	}
}

// ObserveIngestBatchSize records an ingest batch size.
func (m *InMemoryRecorder) ObserveIngestBatchSize(size int) {
	atomic.AddUint64(&m.ingestBatchCount, 1)
	atomic.AddUint64(&m.ingestBatchTotalSize, uint64(size))
}

// ObserveIngestBatchDuration records how long an ingest batch took.
func (m *InMemoryRecorder) ObserveIngestBatchDuration(duration time.Duration) {
	atomic.AddInt64(&m.ingestBatchTotalNs, duration.Nanoseconds())
}

// IncActivityEventPublished counts a published activity event by outcome.
func (m *InMemoryRecorder) IncActivityEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}

// IncActivityEventProcessed counts a consumed activity event by outcome.
func (m *InMemoryRecorder) IncActivityEventProcessed(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.eventsProcessed, 1)
	case "dead_lettered":
		atomic.AddUint64(&m.eventsDeadLettered, 1)
	default:
		atomic.AddUint64(&m.eventsFailed, 1)
	}
}

// SetActivityQueueDepth records the current stream backlog.
func (m *InMemoryRecorder) SetActivityQueueDepth(depth int64) {
	atomic.StoreInt64(&m.activityQueueDepth, depth)
}
