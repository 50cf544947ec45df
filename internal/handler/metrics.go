package handler

import (
	"fmt"
	"net/http"

	"github.com/waxlog/waxlog/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "waxlog_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "waxlog_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "waxlog_registrations_total %d\n", snap.Registrations)

	writeMetric(w, "waxlog_album_cache_hits_total %d\n", snap.AlbumCacheHits)
	writeMetric(w, "waxlog_album_cache_misses_total %d\n", snap.AlbumCacheMisses)

	writeMetric(w, "waxlog_reviews_created_total %d\n", snap.ReviewsCreated)
	writeMetric(w, "waxlog_diary_entries_created_total %d\n", snap.DiaryEntriesCreated)
	writeMetric(w, "waxlog_lists_created_total %d\n", snap.ListsCreated)

	writeMetric(w, "waxlog_albums_ingested_total{status=\"created\"} %d\n", snap.AlbumsIngested)
	writeMetric(w, "waxlog_albums_ingested_total{status=\"skipped\"} %d\n", snap.AlbumsSkipped)
	writeMetric(w, "waxlog_albums_ingested_total{status=\"failed\"} %d\n", snap.AlbumsFailed)

	writeMetric(w, "waxlog_ingest_batches_total %d\n", snap.IngestBatchCount)
	writeMetric(w, "waxlog_ingest_batch_size_sum %d\n", snap.IngestBatchTotalSize)
	writeMetric(w, "waxlog_ingest_batch_duration_seconds_count %d\n", snap.IngestBatchCount)
	writeMetric(w, "waxlog_ingest_batch_duration_seconds_sum %.6f\n", float64(snap.IngestBatchTotalNs)/1e9)

	writeMetric(w, "waxlog_activity_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "waxlog_activity_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)
	writeMetric(w, "waxlog_activity_events_processed_total{status=\"success\"} %d\n", snap.EventsProcessed)
	writeMetric(w, "waxlog_activity_events_processed_total{status=\"failed\"} %d\n", snap.EventsFailed)
	writeMetric(w, "waxlog_activity_events_processed_total{status=\"dead_lettered\"} %d\n", snap.EventsDeadLettered)
	writeMetric(w, "waxlog_activity_queue_depth %d\n", snap.ActivityQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
