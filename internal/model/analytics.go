package model

import "time"

// AnalyticsTotals holds platform-wide row counts.
type AnalyticsTotals struct {
	Users        int64 `json:"users"`
	Albums       int64 `json:"albums"`
	Reviews      int64 `json:"reviews"`
	DiaryEntries int64 `json:"diary_entries"`
	Lists        int64 `json:"lists"`
}

// DayActivity is one day of the admin activity series.
type DayActivity struct {
	Date    time.Time `json:"date"`
	Reviews int64     `json:"reviews"`
	Logs    int64     `json:"logs"`
	Signups int64     `json:"signups"`
}

// ReviewerStat ranks a user by review output.
type ReviewerStat struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	ReviewCount int64  `json:"review_count"`
}

// GenreCount ranks a genre by catalog presence.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}

// AnalyticsOverview is the admin dashboard payload.
type AnalyticsOverview struct {
	Totals        AnalyticsTotals `json:"totals"`
	NewUsers7d    int64           `json:"new_users_7d"`
	NewReviews7d  int64           `json:"new_reviews_7d"`
	DailyActivity []*DayActivity  `json:"daily_activity"`
	TopReviewers  []*ReviewerStat `json:"top_reviewers"`
	TopGenres     []*GenreCount   `json:"top_genres"`
	RecentReviews []*Review       `json:"recent_reviews"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
