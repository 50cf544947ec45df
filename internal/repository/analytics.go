package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/waxlog/waxlog/internal/model"
)

// GetAnalyticsOverview assembles the admin dashboard: totals, 7-day deltas,
// a 14-day activity series, top reviewers, top genres and recent reviews.
func (r *Repository) GetAnalyticsOverview(ctx context.Context) (*model.AnalyticsOverview, error) {
	overview := &model.AnalyticsOverview{GeneratedAt: time.Now()}

	totalsQuery := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM albums),
			(SELECT COUNT(*) FROM reviews),
			(SELECT COUNT(*) FROM diary_entries),
			(SELECT COUNT(*) FROM lists),
			(SELECT COUNT(*) FROM users WHERE created_at > NOW() - INTERVAL '7 days'),
			(SELECT COUNT(*) FROM reviews WHERE created_at > NOW() - INTERVAL '7 days')
	`
	err := r.pool.QueryRow(ctx, totalsQuery).Scan(
		&overview.Totals.Users,
		&overview.Totals.Albums,
		&overview.Totals.Reviews,
		&overview.Totals.DiaryEntries,
		&overview.Totals.Lists,
		&overview.NewUsers7d,
		&overview.NewReviews7d,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics totals: %w", err)
	}

	activityQuery := `
		SELECT d.day,
			(SELECT COUNT(*) FROM reviews WHERE created_at::date = d.day),
			(SELECT COUNT(*) FROM diary_entries WHERE created_at::date = d.day),
			(SELECT COUNT(*) FROM users WHERE created_at::date = d.day)
		FROM generate_series(CURRENT_DATE - INTERVAL '13 days', CURRENT_DATE, '1 day') AS d(day)
		ORDER BY d.day ASC
	`
	rows, err := r.pool.Query(ctx, activityQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily activity: %w", err)
	}
	defer rows.Close()

	overview.DailyActivity = make([]*model.DayActivity, 0, 14)
	for rows.Next() {
		var d model.DayActivity
		if err := rows.Scan(&d.Date, &d.Reviews, &d.Logs, &d.Signups); err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		overview.DailyActivity = append(overview.DailyActivity, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reviewersQuery := `
		SELECT u.id, u.username, COUNT(r.id) AS cnt
		FROM users u
		JOIN reviews r ON r.user_id = u.id
		GROUP BY u.id, u.username
		ORDER BY cnt DESC
		LIMIT 10
	`
	reviewerRows, err := r.pool.Query(ctx, reviewersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get top reviewers: %w", err)
	}
	defer reviewerRows.Close()

	overview.TopReviewers = make([]*model.ReviewerStat, 0, 10)
	for reviewerRows.Next() {
		var s model.ReviewerStat
		if err := reviewerRows.Scan(&s.UserID, &s.Username, &s.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan reviewer stat: %w", err)
		}
		overview.TopReviewers = append(overview.TopReviewers, &s)
	}
	if err := reviewerRows.Err(); err != nil {
		return nil, err
	}

	genresQuery := `
		SELECT g.genre, COUNT(*) AS cnt
		FROM albums, unnest(genres) AS g(genre)
		GROUP BY g.genre
		ORDER BY cnt DESC
		LIMIT 10
	`
	genreRows, err := r.pool.Query(ctx, genresQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get top genres: %w", err)
	}
	defer genreRows.Close()

	overview.TopGenres = make([]*model.GenreCount, 0, 10)
	for genreRows.Next() {
		var g model.GenreCount
		if err := genreRows.Scan(&g.Genre, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan genre count: %w", err)
		}
		overview.TopGenres = append(overview.TopGenres, &g)
	}
	if err := genreRows.Err(); err != nil {
		return nil, err
	}

	recentQuery := `SELECT ` + reviewColumns + reviewJoins + `
		ORDER BY r.created_at DESC
		LIMIT 10`
	recentRows, err := r.pool.Query(ctx, recentQuery, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get recent reviews: %w", err)
	}
	defer recentRows.Close()

	overview.RecentReviews, err = collectReviews(recentRows)
	if err != nil {
		return nil, err
	}

	return overview, nil
}
