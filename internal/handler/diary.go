package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/events"
	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/service"
)

// DiaryHandler handles the listening diary.
type DiaryHandler struct {
	logger   *slog.Logger
	service  *service.DiaryService
	activity *events.Publisher
}

// NewDiaryHandler creates a new DiaryHandler. activity may be nil.
func NewDiaryHandler(logger *slog.Logger, svc *service.DiaryService, activity *events.Publisher) *DiaryHandler {
	return &DiaryHandler{logger: logger, service: svc, activity: activity}
}

// Log records a listen without a review.
// POST /api/v1/diary
func (h *DiaryHandler) Log(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.LogListenRequest
	if !decodeValid(w, r, &req) {
		return
	}

	entry, err := h.service.Log(r.Context(), actor.UserID, service.LogInput{
		AlbumID:  req.AlbumID,
		Rating:   req.Rating,
		Content:  req.Content,
		Tags:     req.Tags,
		Format:   req.Format,
		LoggedAt: req.LoggedAt,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	h.activity.Record(events.KindDiary, actor.UserID)
	writeJSON(w, http.StatusCreated, entry)
}

// List returns the caller's diary with optional filters.
// GET /api/v1/diary?month=YYYY-MM&rating_min=4&format=vinyl
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	entries, err := h.service.List(r.Context(), actor.UserID, diaryListInput(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: entries})
}

// UserDiary returns another user's diary with optional filters.
// GET /api/v1/users/{id}/diary
func (h *DiaryHandler) UserDiary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), chi.URLParam(r, "id"), diaryListInput(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: entries})
}

// Update edits a diary entry. Owner only.
// PUT /api/v1/diary/{id}
func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateDiaryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	entry, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), actor.UserID, service.UpdateDiaryInput{
		Rating:   req.Rating,
		Content:  req.Content,
		Tags:     req.Tags,
		Format:   req.Format,
		LoggedAt: req.LoggedAt,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete removes a diary entry. Owner only.
// DELETE /api/v1/diary/{id}
func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export downloads the caller's full diary as JSON or CSV.
// GET /api/v1/diary/export?format=csv
func (h *DiaryHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())
	kind := r.URL.Query().Get("format")

	body, contentType, err := h.service.Export(r.Context(), actor.UserID, kind)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	filename := "diary.json"
	if contentType == "text/csv" {
		filename = "diary.csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// diaryListInput reads diary filters from query parameters.
func diaryListInput(r *http.Request) service.ListInput {
	offset, limit := parsePage(r)
	query := r.URL.Query()

	input := service.ListInput{
		Month:  query.Get("month"),
		Format: query.Get("format"),
		Offset: offset,
		Limit:  limit,
	}
	if v := query.Get("rating_min"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			input.RatingMin = &parsed
		}
	}
	return input
}
