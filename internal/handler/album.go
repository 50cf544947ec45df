package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/service"
)

// AlbumHandler handles catalog reads and album creation.
type AlbumHandler struct {
	logger  *slog.Logger
	albums  *service.AlbumService
	reviews *service.ReviewService
}

// NewAlbumHandler creates a new AlbumHandler.
func NewAlbumHandler(logger *slog.Logger, albums *service.AlbumService, reviews *service.ReviewService) *AlbumHandler {
	return &AlbumHandler{logger: logger, albums: albums, reviews: reviews}
}

// List returns a newest-first catalog page.
// GET /api/v1/albums
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePage(r)

	albums, total, err := h.albums.List(r.Context(), offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PageEnvelope{
		Data:   albums,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// Get returns an album with tracks and listening stats.
// GET /api/v1/albums/{id}
func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.albums.GetDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Create adds an album to the catalog.
// POST /api/v1/albums
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAlbumRequest
	if !decodeValid(w, r, &req) {
		return
	}

	album, err := h.albums.Create(r.Context(), service.CreateAlbumInput{
		Title:       req.Title,
		Artist:      req.Artist,
		ReleaseYear: req.ReleaseYear,
		CoverURL:    req.CoverURL,
		Genres:      req.Genres,
		Label:       req.Label,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("album created",
		slog.String("album_id", album.ID),
		slog.String("artist", album.Artist),
	)
	writeJSON(w, http.StatusCreated, album)
}

// UpdateDescription sets the album description and source URL.
// PUT /api/v1/albums/{id}/description
func (h *AlbumHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAlbumRequest
	if !decodeValid(w, r, &req) {
		return
	}

	album, err := h.albums.UpdateDescription(r.Context(), chi.URLParam(r, "id"), req.Description, req.WikipediaURL)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// RefreshCover re-fetches cover art from the artwork sources.
// POST /api/v1/albums/{id}/cover/refresh
func (h *AlbumHandler) RefreshCover(w http.ResponseWriter, r *http.Request) {
	album, err := h.albums.RefreshCover(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// Ratings returns the star-bucket distribution for an album.
// GET /api/v1/albums/{id}/ratings
func (h *AlbumHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	dist, err := h.albums.RatingsDistribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

// Reviews lists reviews for an album, newest first.
// GET /api/v1/albums/{id}/reviews
func (h *AlbumHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePage(r)

	reviews, err := h.reviews.AlbumReviews(r.Context(), chi.URLParam(r, "id"), viewerID(r), offset, limit)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListEnvelope{Data: reviews})
}
