package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/service"
)

// NotificationHandler handles the in-app notification inbox.
type NotificationHandler struct {
	logger  *slog.Logger
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(logger *slog.Logger, svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{logger: logger, service: svc}
}

// List returns the caller's notifications, unread first then newest.
// GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())
	offset, limit := parsePage(r)

	notifications, err := h.service.List(r.Context(), actor.UserID, offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: notifications})
}

// MarkRead marks one notification read.
// POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"), actor.UserID); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead marks every unread notification read.
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	updated, err := h.service.MarkAllRead(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}
