package model

import "time"

// Entry types distinguish full reviews from bare listening logs on the feed.
const (
	EntryTypeReview = "review"
	EntryTypeLog    = "log"
)

// Review is a rated write-up of an album.
type Review struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AlbumID     string    `json:"album_id"`
	Rating      float64   `json:"rating"`
	Body        string    `json:"body"`
	EntryType   string    `json:"entry_type"`
	Tags        []string  `json:"tags"`
	ShareToFeed bool      `json:"share_to_feed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Hydrated for feed and album pages; zero when not loaded.
	Username     string `json:"username,omitempty"`
	UserAvatar   string `json:"user_avatar,omitempty"`
	AlbumTitle   string `json:"album_title,omitempty"`
	AlbumArtist  string `json:"album_artist,omitempty"`
	AlbumCover   string `json:"album_cover,omitempty"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	LikedByMe    bool   `json:"liked_by_me"`
}

// Comment is a reply on a review.
type Comment struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	Username   string `json:"username,omitempty"`
	UserAvatar string `json:"user_avatar,omitempty"`
}
