package model

import "time"

// List is a user-curated, optionally collaborative collection of albums.
type List struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Hydrated for list pages; zero when not loaded.
	OwnerUsername string   `json:"owner_username,omitempty"`
	AlbumCount    int64    `json:"album_count"`
	LikeCount     int64    `json:"like_count"`
	PreviewCovers []string `json:"preview_covers,omitempty"`
}

// ListAlbum is an album placed in a list at a position.
type ListAlbum struct {
	ListID   string    `json:"list_id"`
	AlbumID  string    `json:"album_id"`
	Position int       `json:"position"`
	AddedAt  time.Time `json:"added_at"`

	Album *Album `json:"album,omitempty"`
}

// ListCollaborator is a user allowed to edit someone else's list.
type ListCollaborator struct {
	ListID  string    `json:"list_id"`
	UserID  string    `json:"user_id"`
	AddedAt time.Time `json:"added_at"`

	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ListDetail is a list with its full contents for the detail page.
type ListDetail struct {
	List
	Albums        []*ListAlbum        `json:"albums"`
	Collaborators []*ListCollaborator `json:"collaborators"`
	LikedByMe     bool                `json:"liked_by_me"`
}
