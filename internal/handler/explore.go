package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/service"
)

// ExploreHandler handles discovery surfaces: trending, popularity, genres and
// combined search.
type ExploreHandler struct {
	logger *slog.Logger
	albums *service.AlbumService
	users  *service.UserService
}

// NewExploreHandler creates a new ExploreHandler.
func NewExploreHandler(logger *slog.Logger, albums *service.AlbumService, users *service.UserService) *ExploreHandler {
	return &ExploreHandler{logger: logger, albums: albums, users: users}
}

// Trending returns recent releases, newest first.
// GET /api/v1/explore/trending
func (h *ExploreHandler) Trending(w http.ResponseWriter, r *http.Request) {
	_, limit := parsePage(r)

	albums, err := h.albums.Trending(r.Context(), limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: albums})
}

// Popular returns the most-reviewed albums.
// GET /api/v1/explore/popular
func (h *ExploreHandler) Popular(w http.ResponseWriter, r *http.Request) {
	_, limit := parsePage(r)

	albums, err := h.albums.Popular(r.Context(), limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: albums})
}

// PopularWithFriends returns albums most logged by followed users, falling
// back to global popularity for anonymous callers and empty networks.
// GET /api/v1/explore/popular-with-friends
func (h *ExploreHandler) PopularWithFriends(w http.ResponseWriter, r *http.Request) {
	_, limit := parsePage(r)

	albums, err := h.albums.PopularWithFriends(r.Context(), viewerID(r), limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: albums})
}

// Genres lists every distinct genre in the catalog.
// GET /api/v1/explore/genres
func (h *ExploreHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.albums.Genres(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: genres})
}

// ByGenre lists albums in a genre.
// GET /api/v1/explore/genres/{genre}
func (h *ExploreHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePage(r)

	albums, err := h.albums.ByGenre(r.Context(), chi.URLParam(r, "genre"), offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: albums})
}

// Search finds albums and users matching the query.
// GET /api/v1/search?q=...
func (h *ExploreHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Missing search query")
		return
	}
	_, limit := parsePage(r)

	albums, err := h.albums.Search(r.Context(), q, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	users, err := h.users.Search(r.Context(), q, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SearchResponse{Albums: albums, Users: users})
}
