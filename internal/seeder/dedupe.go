package seeder

import (
	"context"
	"log/slog"
	"sort"
)

// Deduplicate finds albums sharing a (title, artist, year) key, keeps the
// best one per group and merges the rest into it. The kept album is the one
// with cover art, oldest first as the tiebreak. Returns the number of
// duplicates removed.
func (s *Seeder) Deduplicate(ctx context.Context) (int, error) {
	candidates, err := s.repo.ListAlbumsForDedupe(ctx)
	if err != nil {
		return 0, err
	}

	groups := make(map[albumKey][]dupeCandidate)
	for _, c := range candidates {
		key := keyFor(c.Title, c.Artist, c.Year)
		groups[key] = append(groups[key], c)
	}

	removed := 0
	for _, group := range groups {
		if len(group) <= 1 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			iCovered := group[i].CoverURL != ""
			jCovered := group[j].CoverURL != ""
			if iCovered != jCovered {
				return iCovered
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})

		kept := group[0]
		for _, dup := range group[1:] {
			if err := s.repo.MergeAlbum(ctx, kept.ID, dup.ID); err != nil {
				return removed, err
			}
			removed++
			s.logger.Info("duplicate removed",
				slog.String("kept", kept.ID),
				slog.String("removed", dup.ID),
				slog.String("title", dup.Title),
				slog.String("artist", dup.Artist),
			)
		}
	}

	s.logger.Info("deduplication complete", slog.Int("removed", removed))
	return removed, nil
}
