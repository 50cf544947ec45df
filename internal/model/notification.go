package model

import "time"

// Notification types.
const (
	NotificationListLike          = "list_like"
	NotificationCollaboratorAdded = "collaborator_added"
)

// Notification is an in-app message delivered to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RefID     string    `json:"ref_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
