package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/waxlog/waxlog/internal/metadata"
	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/model"
)

// Seeder drives catalog ingest from MusicBrainz.
type Seeder struct {
	logger  *slog.Logger
	repo    *Repository
	meta    *metadata.Client
	metrics metrics.Recorder
}

// New creates a Seeder.
func New(logger *slog.Logger, repo *Repository, meta *metadata.Client, recorder metrics.Recorder) *Seeder {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Seeder{
		logger:  logger,
		repo:    repo,
		meta:    meta,
		metrics: recorder,
	}
}

// Options configures one seed run.
type Options struct {
	Count     int // total albums to ingest
	BatchSize int // releases per search page
	Clear     bool
	Genre     string
	Country   string
	Artist    string
}

// Run seeds up to opts.Count albums. Duplicates are skipped by (title,
// artist, year); failures on individual releases skip the release and keep
// going. Returns the number of albums created.
func (s *Seeder) Run(ctx context.Context, opts Options) (int, error) {
	if opts.Count <= 0 {
		opts.Count = 100
	}
	if opts.BatchSize <= 0 || opts.BatchSize > 100 {
		opts.BatchSize = 100
	}

	if opts.Clear {
		albums, tracks, err := s.repo.ClearCatalog(ctx)
		if err != nil {
			return 0, fmt.Errorf("clear catalog: %w", err)
		}
		s.logger.Info("catalog cleared",
			slog.Int64("albums", albums),
			slog.Int64("tracks", tracks),
		)
	}

	existing, err := s.repo.ExistingAlbumKeys(ctx)
	if err != nil {
		return 0, err
	}

	query := metadata.SearchQuery{
		Genre:   opts.Genre,
		Country: opts.Country,
		Artist:  opts.Artist,
	}

	seeded := 0
	offset := 0
	for seeded < opts.Count {
		batchStart := time.Now()
		batchCreated := 0

		s.logger.Info("fetching releases",
			slog.Int("offset", offset),
			slog.Int("limit", opts.BatchSize),
		)
		releases, err := s.meta.SearchReleases(ctx, query, offset, opts.BatchSize)
		if err != nil {
			return seeded, fmt.Errorf("search releases: %w", err)
		}
		if len(releases) == 0 {
			s.logger.Info("no more releases")
			break
		}

		for i := range releases {
			if seeded >= opts.Count {
				break
			}
			if ctx.Err() != nil {
				return seeded, ctx.Err()
			}

			release := &releases[i]
			key := keyFor(release.Title, release.Artist(), metadata.ParseYear(release.Date))
			if _, dup := existing[key]; dup {
				s.metrics.IncAlbumIngested("skipped")
				continue
			}
			if release.ID == "" {
				s.metrics.IncAlbumIngested("skipped")
				continue
			}

			if s.ingestRelease(ctx, release) {
				existing[key] = struct{}{}
				seeded++
				batchCreated++
			}
		}

		offset += len(releases)

		s.metrics.ObserveIngestBatchSize(batchCreated)
		s.metrics.ObserveIngestBatchDuration(time.Since(batchStart))
		s.logger.Info("batch committed",
			slog.Int("created", batchCreated),
			slog.Int("total", seeded),
		)
	}

	s.logger.Info("seed complete", slog.Int("seeded", seeded))
	return seeded, nil
}

// ingestRelease fetches detail and enrichment for one release and inserts
// it. Returns true when an album was created.
func (s *Seeder) ingestRelease(ctx context.Context, release *metadata.Release) bool {
	log := s.logger.With(
		slog.String("mbid", release.ID),
		slog.String("title", release.Title),
		slog.String("artist", release.Artist()),
	)

	detail, err := s.meta.GetReleaseDetail(ctx, release.ID)
	if err != nil {
		log.Warn("release detail failed", slog.String("error", err.Error()))
		s.metrics.IncAlbumIngested("failed")
		return false
	}

	cover, err := s.meta.FetchCoverByMBID(ctx, release.ID)
	if err != nil || cover == "" {
		cover, _ = s.meta.FetchCoverURL(ctx, release.Artist(), release.Title)
	}

	rgid := detail.ReleaseGroupID()
	if rgid == "" {
		rgid = release.ReleaseGroupID()
	}
	genres, _ := s.meta.GetReleaseGroupGenres(ctx, rgid)
	description, wikipediaURL, _ := s.meta.DescribeAlbum(ctx, release.Artist(), release.Title, rgid)

	album, tracks := releaseToAlbum(detail, cover, genres, description, wikipediaURL)
	if len(tracks) == 0 {
		log.Info("no tracks, skipping")
		s.metrics.IncAlbumIngested("skipped")
		return false
	}

	if err := s.repo.InsertAlbumWithTracks(ctx, album, tracks); err != nil {
		log.Warn("insert failed", slog.String("error", err.Error()))
		s.metrics.IncAlbumIngested("failed")
		return false
	}

	s.metrics.IncAlbumIngested("created")
	log.Info("album seeded", slog.String("album_id", album.ID))
	return true
}

// releaseToAlbum maps a MusicBrainz release to catalog rows.
func releaseToAlbum(release *metadata.Release, coverURL string, genres []string, description, wikipediaURL string) (*model.Album, []*model.Track) {
	title := release.Title
	if title == "" {
		title = "Unknown"
	}

	album := &model.Album{
		ID:           uuid.NewString(),
		Title:        title,
		Artist:       release.Artist(),
		ReleaseYear:  metadata.ParseYear(release.Date),
		CoverURL:     coverURL,
		Genres:       genres,
		Label:        release.Label(),
		Description:  description,
		WikipediaURL: wikipediaURL,
		CreatedAt:    time.Now().UTC(),
	}
	if album.Genres == nil {
		album.Genres = []string{}
	}

	var tracks []*model.Track
	number := 1
	totalMs := 0
	for _, medium := range release.Media {
		for _, t := range medium.Tracks {
			lengthMs := 0
			if t.Length != nil {
				lengthMs = *t.Length
			} else if t.Recording.Length != nil {
				lengthMs = *t.Recording.Length
			}
			totalMs += lengthMs

			trackTitle := t.Title
			if trackTitle == "" {
				trackTitle = "Unknown"
			}
			tracks = append(tracks, &model.Track{
				ID:          uuid.NewString(),
				AlbumID:     album.ID,
				TrackNumber: number,
				Title:       trackTitle,
				Duration:    metadata.MsToDuration(lengthMs),
			})
			number++
		}
	}
	album.LengthSeconds = totalMs / 1000

	return album, tracks
}
