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

// UserHandler handles profiles, follows and favorites.
type UserHandler struct {
	logger   *slog.Logger
	service  *service.UserService
	activity *events.Publisher
}

// NewUserHandler creates a new UserHandler. activity may be nil.
func NewUserHandler(logger *slog.Logger, svc *service.UserService, activity *events.Publisher) *UserHandler {
	return &UserHandler{logger: logger, service: svc, activity: activity}
}

// viewerID returns the authenticated user's ID, or "" for anonymous requests.
func viewerID(r *http.Request) string {
	if a := auth.AuthFromContext(r.Context()); a != nil {
		return a.UserID
	}
	return ""
}

// GetProfile returns a public profile by user ID.
// GET /api/v1/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetProfileByUsername returns a public profile by username.
// GET /api/v1/users/by-username/{username}
func (h *UserHandler) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfileByUsername(r.Context(), chi.URLParam(r, "username"), viewerID(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile updates the caller's profile.
// PUT /api/v1/me/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateProfileRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), actor.UserID, service.UpdateProfileInput{
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Follow creates a follow edge from the caller to the target user.
// POST /api/v1/users/{id}/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Follow(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	h.activity.Record(events.KindFollow, actor.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// Unfollow removes a follow edge.
// DELETE /api/v1/users/{id}/follow
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Unfollow(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Following lists the users the caller follows.
// GET /api/v1/me/following
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	users, err := h.service.Following(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: users})
}

// Recommended lists suggested users to follow.
// GET /api/v1/users/recommended
func (h *UserHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	_, limit := parsePage(r)

	users, err := h.service.Recommended(r.Context(), viewerID(r), limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: users})
}

// SetFavorites replaces the caller's pinned favorite albums.
// PUT /api/v1/me/favorites
func (h *UserHandler) SetFavorites(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.FavoritesRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.service.SetFavorites(r.Context(), actor.UserID, req.AlbumIDs); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	albums, err := h.service.Favorites(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: albums})
}

// Favorites lists a user's pinned albums in position order.
// GET /api/v1/users/{id}/favorites
func (h *UserHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.Favorites(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: albums})
}
