package model

import "time"

// Listening formats accepted on diary entries.
var DiaryFormats = []string{"digital", "vinyl", "cd", "cassette", "live"}

// IsValidDiaryFormat reports whether format is one of the accepted values.
func IsValidDiaryFormat(format string) bool {
	for _, f := range DiaryFormats {
		if f == format {
			return true
		}
	}
	return false
}

// DiaryEntry records one listen of an album.
type DiaryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AlbumID   string    `json:"album_id"`
	ReviewID  *string   `json:"review_id,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags"`
	Format    string    `json:"format"`
	LoggedAt  time.Time `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`

	// Hydrated for diary pages; zero when not loaded.
	AlbumTitle  string `json:"album_title,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	AlbumCover  string `json:"album_cover,omitempty"`
	AlbumYear   *int   `json:"album_year,omitempty"`
}
