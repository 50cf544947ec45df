package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/waxlog/waxlog/internal/cache"
	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// Album service errors.
var (
	ErrAlbumNotFound = errors.New("album not found")
	ErrCoverNotFound = errors.New("no cover art found")
)

// ArtworkFetcher looks up cover art for an album.
type ArtworkFetcher interface {
	FetchCoverURL(ctx context.Context, artist, title string) (string, error)
}

// DescriptionFetcher looks up an album write-up. Returns the text and the
// source URL.
type DescriptionFetcher interface {
	FetchDescription(ctx context.Context, artist, title string) (string, string, error)
}

// AlbumService handles catalog reads, album creation and enrichment.
type AlbumService struct {
	repo         *repository.Repository
	cache        *cache.Cache
	artwork      ArtworkFetcher
	descriptions DescriptionFetcher
	metrics      metrics.Recorder
}

// NewAlbumService creates a new AlbumService. artwork and descriptions may be
// nil when enrichment is not configured.
func NewAlbumService(repo *repository.Repository, c *cache.Cache, artwork ArtworkFetcher, descriptions DescriptionFetcher, recorder metrics.Recorder) *AlbumService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AlbumService{
		repo:         repo,
		cache:        c,
		artwork:      artwork,
		descriptions: descriptions,
		metrics:      recorder,
	}
}

// GetDetail returns an album with tracks and listening stats, cache-first.
func (s *AlbumService) GetDetail(ctx context.Context, id string) (*model.AlbumDetail, error) {
	if cached, _ := s.cache.GetAlbumDetail(ctx, id); cached != nil {
		s.metrics.IncAlbumCacheHit()
		return cached, nil
	}
	s.metrics.IncAlbumCacheMiss()

	detail, err := s.repo.GetAlbumDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}

	// Backfill cache; staleness is bounded by the TTL.
	_ = s.cache.SetAlbumDetail(ctx, detail)

	return detail, nil
}

// List returns the newest-first catalog page with the total count.
func (s *AlbumService) List(ctx context.Context, offset, limit int) ([]*model.Album, int64, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListAlbums(ctx, offset, limit)
}

// Search ranks albums by full-text and trigram match.
func (s *AlbumService) Search(ctx context.Context, q string, limit int) ([]*model.Album, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.SearchAlbums(ctx, q, limit)
}

// Trending returns recent releases, newest first.
func (s *AlbumService) Trending(ctx context.Context, limit int) ([]*model.Album, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}
	return s.repo.ListTrendingAlbums(ctx, limit)
}

// ByGenre lists albums whose genres contain the given substring.
func (s *AlbumService) ByGenre(ctx context.Context, genre string, offset, limit int) ([]*model.Album, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListAlbumsByGenre(ctx, genre, offset, limit)
}

// Popular returns the most-reviewed albums.
func (s *AlbumService) Popular(ctx context.Context, limit int) ([]*model.Album, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}
	return s.repo.ListPopularAlbums(ctx, limit)
}

// PopularWithFriends returns albums most logged by the users viewerID
// follows, falling back to global popularity for users who follow nobody.
func (s *AlbumService) PopularWithFriends(ctx context.Context, viewerID string, limit int) ([]*model.Album, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}
	if viewerID == "" {
		return s.repo.ListPopularAlbums(ctx, limit)
	}
	albums, err := s.repo.ListPopularWithFriends(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return s.repo.ListPopularAlbums(ctx, limit)
	}
	return albums, nil
}

// Genres lists every distinct genre in the catalog, sorted.
func (s *AlbumService) Genres(ctx context.Context) ([]string, error) {
	return s.repo.ListGenres(ctx)
}

// RatingsDistribution returns star-bucket percentages for an album.
func (s *AlbumService) RatingsDistribution(ctx context.Context, albumID string) (*model.RatingsDistribution, error) {
	if _, err := s.repo.GetAlbumByID(ctx, albumID); err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}
	return s.repo.GetRatingsDistribution(ctx, albumID)
}

// CreateAlbumInput defines input for adding an album to the catalog.
type CreateAlbumInput struct {
	Title       string
	Artist      string
	ReleaseYear *int
	CoverURL    string
	Genres      []string
	Label       string
	Description string
}

// Create adds an album. When no cover URL is supplied, artwork sources are
// tried best-effort.
func (s *AlbumService) Create(ctx context.Context, input CreateAlbumInput) (*model.Album, error) {
	album := &model.Album{
		ID:          newUUID(),
		Title:       input.Title,
		Artist:      input.Artist,
		ReleaseYear: input.ReleaseYear,
		CoverURL:    input.CoverURL,
		Genres:      input.Genres,
		Label:       input.Label,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if album.CoverURL == "" && s.artwork != nil {
		if cover, err := s.artwork.FetchCoverURL(ctx, album.Artist, album.Title); err == nil {
			album.CoverURL = cover
		}
	}

	if err := s.repo.CreateAlbum(ctx, album); err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return album, nil
}

// UpdateDescription sets the album description and optional source URL.
func (s *AlbumService) UpdateDescription(ctx context.Context, id, description, wikipediaURL string) (*model.Album, error) {
	if err := s.repo.UpdateAlbumDescription(ctx, id, description, wikipediaURL); err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}
	_ = s.cache.InvalidateAlbum(ctx, id)
	return s.repo.GetAlbumByID(ctx, id)
}

// RefreshCover re-fetches cover art for an album and stores it.
func (s *AlbumService) RefreshCover(ctx context.Context, id string) (*model.Album, error) {
	album, err := s.repo.GetAlbumByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlbumNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}

	if s.artwork == nil {
		return nil, ErrCoverNotFound
	}

	cover, err := s.artwork.FetchCoverURL(ctx, album.Artist, album.Title)
	if err != nil || cover == "" {
		return nil, ErrCoverNotFound
	}

	if err := s.repo.UpdateAlbumCover(ctx, id, cover); err != nil {
		return nil, err
	}
	_ = s.cache.InvalidateAlbum(ctx, id)

	album.CoverURL = cover
	return album, nil
}

// normalizePage clamps offset pagination parameters.
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
