package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/waxlog/waxlog/internal/events"
	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// Deduper removes duplicate catalog entries.
type Deduper interface {
	Deduplicate(ctx context.Context) (int, error)
}

// realtimeDays is the window of stream-fed counters on the dashboard.
const realtimeDays = 7

// AdminHandler handles the admin dashboard and maintenance actions. Routes
// using it sit behind the admin middleware.
type AdminHandler struct {
	logger   *slog.Logger
	repo     *repository.Repository
	deduper  Deduper
	activity *events.Summarizer
}

// NewAdminHandler creates a new AdminHandler. deduper and activity may be
// nil when the catalog maintenance jobs or the event pipeline are not wired.
func NewAdminHandler(logger *slog.Logger, repo *repository.Repository, deduper Deduper, activity *events.Summarizer) *AdminHandler {
	return &AdminHandler{logger: logger, repo: repo, deduper: deduper, activity: activity}
}

// analyticsResponse is the SQL overview plus the stream-fed realtime slice.
type analyticsResponse struct {
	*model.AnalyticsOverview
	Realtime []*events.DaySummary `json:"realtime,omitempty"`
}

// Analytics returns the admin dashboard overview.
// GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	overview, err := h.repo.GetAnalyticsOverview(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	resp := analyticsResponse{AnalyticsOverview: overview}
	if h.activity != nil {
		realtime, err := h.activity.Recent(r.Context(), realtimeDays)
		if err != nil {
			h.logger.Warn("realtime activity unavailable", slog.String("error", err.Error()))
		} else {
			resp.Realtime = realtime
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Deduplicate removes duplicate albums from the catalog.
// POST /api/v1/admin/albums/deduplicate
func (h *AdminHandler) Deduplicate(w http.ResponseWriter, r *http.Request) {
	if h.deduper == nil {
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Catalog maintenance is not configured")
		return
	}

	removed, err := h.deduper.Deduplicate(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("catalog deduplicated", slog.Int("removed", removed))
	writeJSON(w, http.StatusOK, dto.DeduplicateResponse{Removed: removed})
}
