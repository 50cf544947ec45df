package events

import "fmt"

const (
	maxUserIDLength = 64

	// maxEventAge bounds how stale an event may be before it is treated as
	// poison, in milliseconds. Stale events would land in the wrong daily
	// bucket silently.
	maxEventAge = int64(48 * 60 * 60 * 1000)
)

var validKinds = map[string]bool{
	KindSignup: true,
	KindReview: true,
	KindDiary:  true,
	KindList:   true,
	KindFollow: true,
	KindLike:   true,
}

// ValidatePayload validates activity event payload fields.
func ValidatePayload(payload Payload) error {
	if !validKinds[payload.Kind] {
		return fmt.Errorf("unknown event kind %q", payload.Kind)
	}
	if payload.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(payload.UserID) > maxUserIDLength {
		return fmt.Errorf("user_id too long")
	}
	if payload.At <= 0 {
		return fmt.Errorf("timestamp must be set")
	}
	return nil
}
