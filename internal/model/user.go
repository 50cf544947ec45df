// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	GoogleID     *string   `json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	Bio          string    `json:"bio"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasGoogleLogin reports whether the account was created through Google OAuth.
func (u *User) HasGoogleLogin() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// Profile is a user together with their public activity counts.
type Profile struct {
	User
	ReviewCount    int64 `json:"review_count"`
	ListCount      int64 `json:"list_count"`
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	FollowedByMe   bool  `json:"followed_by_me"`
}

// Follow represents one directed edge of the social graph.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// FavoriteAlbum pins an album on a user's profile at a fixed position.
type FavoriteAlbum struct {
	UserID   string `json:"user_id"`
	AlbumID  string `json:"album_id"`
	Position int    `json:"position"`
}

// AuthContext holds authenticated user information injected into requests.
type AuthContext struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
