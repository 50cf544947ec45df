package model

import "time"

// Album represents a catalog entry for a studio release.
type Album struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	ReleaseYear   *int      `json:"release_year"`
	CoverURL      string    `json:"cover_url"`
	Genres        []string  `json:"genres"`
	Label         string    `json:"label,omitempty"`
	LengthSeconds int       `json:"length_seconds,omitempty"`
	Description   string    `json:"description,omitempty"`
	WikipediaURL  string    `json:"wikipedia_url,omitempty"`
	SpotifyID     string    `json:"spotify_id,omitempty"`
	AppleID       string    `json:"apple_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Track is a single recording on an album.
type Track struct {
	ID          string `json:"id"`
	AlbumID     string `json:"album_id"`
	TrackNumber int    `json:"track_number"`
	Title       string `json:"title"`
	Duration    string `json:"duration"` // "M:SS"
}

// AlbumDetail is an album with its tracklist and aggregate listening stats.
type AlbumDetail struct {
	Album
	Tracks    []*Track `json:"tracks"`
	AvgRating float64  `json:"avg_rating"`
	TotalLogs int64    `json:"total_logs"`
}

// RatingsDistribution holds the share of diary ratings per star bucket.
// Buckets cover [0.5,1.5), [1.5,2.5), [2.5,3.5), [3.5,4.5), [4.5,5].
type RatingsDistribution struct {
	Total   int64     `json:"total"`
	Buckets []float64 `json:"buckets"` // percentages, index 0 = 1 star
}
