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

// ListHandler handles curated lists, their contents, likes and collaborators.
type ListHandler struct {
	logger   *slog.Logger
	service  *service.ListService
	activity *events.Publisher
}

// NewListHandler creates a new ListHandler. activity may be nil.
func NewListHandler(logger *slog.Logger, svc *service.ListService, activity *events.Publisher) *ListHandler {
	return &ListHandler{logger: logger, service: svc, activity: activity}
}

// Create makes a new list owned by the caller.
// POST /api/v1/lists
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.CreateListRequest
	if !decodeValid(w, r, &req) {
		return
	}

	list, err := h.service.Create(r.Context(), actor.UserID, req.Title, req.Description)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	h.activity.Record(events.KindList, actor.UserID)
	writeJSON(w, http.StatusCreated, list)
}

// Get returns a list with albums, collaborators and viewer like state.
// GET /api/v1/lists/{id}
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Mine lists the caller's lists, including collaborations.
// GET /api/v1/me/lists
func (h *ListHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	lists, err := h.service.Mine(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: lists})
}

// UserLists lists a user's own lists for their public profile.
// GET /api/v1/users/{id}/lists
func (h *ListHandler) UserLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.OwnedBy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: lists})
}

// Liked lists the lists the caller has liked.
// GET /api/v1/me/lists/liked
func (h *ListHandler) Liked(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	lists, err := h.service.Liked(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: lists})
}

// Update edits a list. Owner and collaborators.
// PUT /api/v1/lists/{id}
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateListRequest
	if !decodeValid(w, r, &req) {
		return
	}

	list, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), actor.UserID, service.UpdateListInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Delete removes a list and its contents. Owner only.
// DELETE /api/v1/lists/{id}
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddAlbum appends an album to a list. Owner and collaborators.
// POST /api/v1/lists/{id}/albums
func (h *ListHandler) AddAlbum(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.AddListAlbumRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.service.AddAlbum(r.Context(), chi.URLParam(r, "id"), actor.UserID, req.AlbumID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAlbum removes an album from a list. Owner and collaborators.
// DELETE /api/v1/lists/{id}/albums/{albumID}
func (h *ListHandler) RemoveAlbum(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	err := h.service.RemoveAlbum(r.Context(), chi.URLParam(r, "id"), actor.UserID, chi.URLParam(r, "albumID"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like records a like on a list.
// POST /api/v1/lists/{id}/like
func (h *ListHandler) Like(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Like(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlike removes a like from a list.
// DELETE /api/v1/lists/{id}/like
func (h *ListHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.Unlike(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCollaborator grants edit access by username. Owner only.
// POST /api/v1/lists/{id}/collaborators
func (h *ListHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	var req dto.AddCollaboratorRequest
	if !decodeValid(w, r, &req) {
		return
	}

	collab, err := h.service.AddCollaborator(r.Context(), chi.URLParam(r, "id"), actor.UserID, req.Username)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collab)
}

// RemoveCollaborator revokes edit access. Owner removes anyone; collaborators
// may remove themselves.
// DELETE /api/v1/lists/{id}/collaborators/{userID}
func (h *ListHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	err := h.service.RemoveCollaborator(r.Context(), chi.URLParam(r, "id"), actor.UserID, chi.URLParam(r, "userID"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
