// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/waxlog/waxlog/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ListEnvelope wraps an unpaged collection response.
type ListEnvelope struct {
	Data any `json:"data"`
}

// PageEnvelope wraps an offset-paged collection response.
type PageEnvelope struct {
	Data   any   `json:"data"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// AuthResponse carries a signed token with the account it belongs to.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterRequest represents the request body for account creation.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the request body for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty"`
}

// FavoritesRequest replaces the ordered favorite albums on a profile.
type FavoritesRequest struct {
	AlbumIDs []string `json:"album_ids" validate:"max=5,dive,required"`
}

// CreateAlbumRequest represents the request body for adding an album.
type CreateAlbumRequest struct {
	Title       string   `json:"title" validate:"required"`
	Artist      string   `json:"artist" validate:"required"`
	ReleaseYear *int     `json:"release_year,omitempty" validate:"omitempty,gte=1000,lte=2100"`
	CoverURL    string   `json:"cover_url,omitempty" validate:"omitempty,url"`
	Genres      []string `json:"genres,omitempty"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
}

// UpdateAlbumRequest represents the request body for description updates.
type UpdateAlbumRequest struct {
	Description  string `json:"description" validate:"required"`
	WikipediaURL string `json:"wikipedia_url,omitempty" validate:"omitempty,url"`
}

// CreateReviewRequest represents the request body for posting a review.
// share_to_feed defaults to true.
type CreateReviewRequest struct {
	AlbumID     string     `json:"album_id" validate:"required"`
	Rating      float64    `json:"rating" validate:"required"`
	Body        string     `json:"body,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ShareToFeed *bool      `json:"share_to_feed,omitempty"`
	Format      string     `json:"format,omitempty"`
	LoggedAt    *time.Time `json:"logged_at,omitempty"`
}

// UpdateReviewRequest represents the request body for editing a review.
type UpdateReviewRequest struct {
	Rating      *float64 `json:"rating,omitempty"`
	Body        *string  `json:"body,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ShareToFeed *bool    `json:"share_to_feed,omitempty"`
}

// CommentRequest represents the request body for posting a comment.
type CommentRequest struct {
	Body string `json:"body" validate:"required"`
}

// LogListenRequest represents the request body for a bare diary entry.
type LogListenRequest struct {
	AlbumID  string     `json:"album_id" validate:"required"`
	Rating   *float64   `json:"rating,omitempty"`
	Content  string     `json:"content,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	Format   string     `json:"format,omitempty"`
	LoggedAt *time.Time `json:"logged_at,omitempty"`
}

// UpdateDiaryRequest represents the request body for editing a diary entry.
type UpdateDiaryRequest struct {
	Rating   *float64   `json:"rating,omitempty"`
	Content  *string    `json:"content,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	Format   *string    `json:"format,omitempty"`
	LoggedAt *time.Time `json:"logged_at,omitempty"`
}

// CreateListRequest represents the request body for creating a list.
type CreateListRequest struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// UpdateListRequest represents the request body for editing a list.
type UpdateListRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// AddListAlbumRequest represents the request body for adding an album to a
// list.
type AddListAlbumRequest struct {
	AlbumID string `json:"album_id" validate:"required"`
}

// AddCollaboratorRequest represents the request body for inviting a
// collaborator by username.
type AddCollaboratorRequest struct {
	Username string `json:"username" validate:"required"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// DiscoveryRequest represents the request body for AI discovery prompts.
type DiscoveryRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// AlbumInsightRequest represents the request body for AI album insights.
type AlbumInsightRequest struct {
	Artist string `json:"artist" validate:"required"`
	Title  string `json:"title" validate:"required"`
}

// PolishReviewRequest represents the request body for AI review polishing.
type PolishReviewRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// AIResponse carries generated text. Available is false when the AI backend
// is unconfigured or failing.
type AIResponse struct {
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

// SearchResponse carries combined album and user search results.
type SearchResponse struct {
	Albums []*model.Album `json:"albums,omitempty"`
	Users  []*model.User  `json:"users,omitempty"`
}

// DeduplicateResponse reports the result of a catalog dedupe run.
type DeduplicateResponse struct {
	Removed int `json:"removed"`
}
