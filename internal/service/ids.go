package service

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// newUUID generates IDs for users, albums and lists.
func newUUID() string {
	return uuid.NewString()
}

// newULID generates time-sortable IDs for reviews, comments, diary entries
// and notifications.
func newULID() string {
	return ulid.Make().String()
}
