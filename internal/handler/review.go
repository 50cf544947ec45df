package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/events"
	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/service"
)

// ReviewHandler handles reviews, likes, comments and the feed.
type ReviewHandler struct {
	logger   *slog.Logger
	service  *service.ReviewService
	activity *events.Publisher
}

// NewReviewHandler creates a new ReviewHandler. activity may be nil.
func NewReviewHandler(logger *slog.Logger, svc *service.ReviewService, activity *events.Publisher) *ReviewHandler {
	return &ReviewHandler{logger: logger, service: svc, activity: activity}
}

// Create posts a review and records the listen in the diary.
// POST /api/v1/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.CreateReviewRequest
	if !decodeValid(w, r, &req) {
		return
	}

	shareToFeed := true
	if req.ShareToFeed != nil {
		shareToFeed = *req.ShareToFeed
	}

	review, err := h.service.Create(r.Context(), actor.UserID, service.CreateReviewInput{
		AlbumID:     req.AlbumID,
		Rating:      req.Rating,
		Body:        req.Body,
		Tags:        req.Tags,
		ShareToFeed: shareToFeed,
		Format:      req.Format,
		LoggedAt:    req.LoggedAt,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("review created",
		slog.String("review_id", review.ID),
		slog.String("album_id", review.AlbumID),
	)
	h.activity.Record(events.KindReview, actor.UserID)
	writeJSON(w, http.StatusCreated, review)
}

// Get returns a single review.
// GET /api/v1/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Update edits a review. Owner or admin.
// PUT /api/v1/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateReviewRequest
	if !decodeValid(w, r, &req) {
		return
	}

	review, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), actor, service.UpdateReviewInput{
		Rating:      req.Rating,
		Body:        req.Body,
		Tags:        req.Tags,
		ShareToFeed: req.ShareToFeed,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Delete removes a review. The paired diary entry keeps the listen.
// DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feed returns shared entries from users the caller follows.
// GET /api/v1/feed
func (h *ReviewHandler) Feed(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())
	offset, limit := parsePage(r)
	reviewsOnly := r.URL.Query().Get("reviews_only") == "true"

	reviews, err := h.service.Feed(r.Context(), actor.UserID, reviewsOnly, offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: reviews})
}

// UserReviews lists a user's reviews, newest first.
// GET /api/v1/users/{id}/reviews
func (h *ReviewHandler) UserReviews(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePage(r)

	reviews, err := h.service.UserReviews(r.Context(), chi.URLParam(r, "id"), viewerID(r), offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: reviews})
}

// Like records a like on a review.
// POST /api/v1/reviews/{id}/like
func (h *ReviewHandler) Like(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Like(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	h.activity.Record(events.KindLike, actor.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// Unlike removes a like from a review.
// DELETE /api/v1/reviews/{id}/like
func (h *ReviewHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Unlike(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment posts a reply on a review.
// POST /api/v1/reviews/{id}/comments
func (h *ReviewHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.CommentRequest
	if !decodeValid(w, r, &req) {
		return
	}

	comment, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), actor.UserID, req.Body)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Comments lists a review's comments in ascending order.
// GET /api/v1/reviews/{id}/comments
func (h *ReviewHandler) Comments(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePage(r)

	comments, err := h.service.Comments(r.Context(), chi.URLParam(r, "id"), offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: comments})
}
