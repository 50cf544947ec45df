package seeder

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/waxlog/waxlog/internal/model"
)

// BackfillCovers fetches cover art for albums that have none. With dryRun
// set, nothing is written. Returns updated and total counts.
func (s *Seeder) BackfillCovers(ctx context.Context, dryRun bool) (updated, total int, err error) {
	stubs, err := s.repo.AlbumsMissingCovers(ctx)
	if err != nil {
		return 0, 0, err
	}
	total = len(stubs)
	if total == 0 {
		s.logger.Info("no albums with missing covers")
		return 0, 0, nil
	}
	s.logger.Info("backfilling covers", slog.Int("total", total), slog.Bool("dry_run", dryRun))

	for _, album := range stubs {
		if ctx.Err() != nil {
			return updated, total, ctx.Err()
		}

		cover, err := s.meta.FetchCoverURL(ctx, album.Artist, album.Title)
		if err != nil || cover == "" {
			s.logger.Info("cover not found",
				slog.String("title", album.Title),
				slog.String("artist", album.Artist),
			)
			continue
		}

		if !dryRun {
			if err := s.repo.UpdateAlbumCover(ctx, album.ID, cover); err != nil {
				s.logger.Warn("cover update failed",
					slog.String("album_id", album.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
		}
		updated++
	}

	s.logger.Info("cover backfill done", slog.Int("updated", updated), slog.Int("total", total))
	return updated, total, nil
}

// BackfillDescriptions fetches write-ups for albums that have none.
func (s *Seeder) BackfillDescriptions(ctx context.Context, dryRun bool) (updated, total int, err error) {
	stubs, err := s.repo.AlbumsMissingDescriptions(ctx)
	if err != nil {
		return 0, 0, err
	}
	total = len(stubs)
	if total == 0 {
		s.logger.Info("no albums with missing descriptions")
		return 0, 0, nil
	}
	s.logger.Info("backfilling descriptions", slog.Int("total", total), slog.Bool("dry_run", dryRun))

	for _, album := range stubs {
		if ctx.Err() != nil {
			return updated, total, ctx.Err()
		}

		description, wikipediaURL, err := s.meta.FetchDescription(ctx, album.Artist, album.Title)
		if err != nil || description == "" {
			s.logger.Info("description not found",
				slog.String("title", album.Title),
				slog.String("artist", album.Artist),
			)
			continue
		}

		if !dryRun {
			if err := s.repo.UpdateAlbumDescription(ctx, album.ID, description, wikipediaURL); err != nil {
				s.logger.Warn("description update failed",
					slog.String("album_id", album.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
		}
		updated++
	}

	s.logger.Info("description backfill done", slog.Int("updated", updated), slog.Int("total", total))
	return updated, total, nil
}

// BackfillDiary creates diary entries for reviews whose (user, album) pair
// has none, dated at the review's creation time.
func (s *Seeder) BackfillDiary(ctx context.Context, dryRun bool) (created, total int, err error) {
	stubs, err := s.repo.ReviewsWithoutDiary(ctx)
	if err != nil {
		return 0, 0, err
	}
	total = len(stubs)
	if total == 0 {
		s.logger.Info("all reviews already have diary entries")
		return 0, 0, nil
	}
	s.logger.Info("backfilling diary", slog.Int("total", total), slog.Bool("dry_run", dryRun))

	for _, review := range stubs {
		if dryRun {
			created++
			continue
		}

		reviewID := review.ID
		rating := review.Rating
		entry := &model.DiaryEntry{
			ID:       ulid.Make().String(),
			UserID:   review.UserID,
			AlbumID:  review.AlbumID,
			ReviewID: &reviewID,
			Rating:   &rating,
			Content:  review.Body,
			Tags:     review.Tags,
			Format:   "digital",
			LoggedAt: review.CreatedAt,
		}
		if err := s.repo.InsertDiaryEntry(ctx, entry); err != nil {
			s.logger.Warn("diary insert failed",
				slog.String("review_id", review.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		created++
	}

	s.logger.Info("diary backfill done", slog.Int("created", created), slog.Int("total", total))
	return created, total, nil
}
