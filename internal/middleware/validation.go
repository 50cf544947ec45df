// Package middleware provides HTTP middleware for the waxlog API.
package middleware

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Validation limits.
const (
	// MaxUsernameLength is the maximum length for a username.
	MaxUsernameLength = 30

	// MinUsernameLength is the minimum length for a username.
	MinUsernameLength = 3

	// MaxBioLength is the maximum length for a profile bio.
	MaxBioLength = 500

	// MaxReviewLength is the maximum length for review text.
	MaxReviewLength = 10000

	// MaxTagsPerReview is the maximum number of tags on a review.
	MaxTagsPerReview = 10

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 32
)

// Validation errors.
var (
	ErrUsernameTooLong   = errors.New("username exceeds maximum length")
	ErrUsernameTooShort  = errors.New("username is too short")
	ErrUsernameInvalid   = errors.New("username contains invalid characters")
	ErrUsernameReserved  = errors.New("username is reserved")
	ErrBioTooLong        = errors.New("bio exceeds maximum length")
	ErrReviewTooLong     = errors.New("review text exceeds maximum length")
	ErrTooManyTags       = errors.New("too many tags")
	ErrTagInvalid        = errors.New("tag is empty or too long")
	ErrRatingOutOfRange  = errors.New("rating must be between 0.5 and 5")
	ErrRatingNotHalfStep = errors.New("rating must be a half-star increment")
)

// ReservedUsernames contains names that cannot be registered.
// These collide with system routes or invite impersonation.
var ReservedUsernames = map[string]bool{
	// System routes
	"api":           true,
	"admin":         true,
	"healthz":       true,
	"readyz":        true,
	"metrics":       true,
	"static":        true,
	"assets":        true,
	"explore":       true,
	"search":        true,
	"notifications": true,
	"settings":      true,
	"me":            true,

	// Auth paths
	"login":    true,
	"logout":   true,
	"register": true,
	"auth":     true,
	"oauth":    true,
	"callback": true,

	// Brand protection
	"waxlog": true,
	"wax":    true,

	// Common abuse targets
	"password":    true,
	"reset":       true,
	"verify":      true,
	"confirm":     true,
	"support":     true,
	"moderator":   true,
	"unsubscribe": true,

	// Common file paths
	"robots":     true,
	"sitemap":    true,
	"favicon":    true,
	"well-known": true,
}

// validUsernamePattern matches valid username characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore
var validUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername validates a username at registration time.
func ValidateUsername(username string) error {
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}

	if len(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}

	// Reject non-ASCII up front to prevent homograph impersonation.
	for _, r := range username {
		if r > unicode.MaxASCII {
			return ErrUsernameInvalid
		}
	}

	if !validUsernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}

	// Check reserved names (case-insensitive)
	if ReservedUsernames[strings.ToLower(username)] {
		return ErrUsernameReserved
	}

	return nil
}

// ValidateBio validates a profile bio.
func ValidateBio(bio string) error {
	if len(bio) > MaxBioLength {
		return ErrBioTooLong
	}
	return nil
}

// ValidateReviewText validates review body text.
func ValidateReviewText(text string) error {
	if len(text) > MaxReviewLength {
		return ErrReviewTooLong
	}
	return nil
}

// ValidateTags validates a review tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagsPerReview {
		return ErrTooManyTags
	}
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || len(trimmed) > MaxTagLength {
			return ErrTagInvalid
		}
	}
	return nil
}

// ValidateRating validates a star rating. Ratings run from half a star to
// five stars in half-star steps.
func ValidateRating(rating float64) error {
	if rating < 0.5 || rating > 5.0 {
		return ErrRatingOutOfRange
	}

	doubled := rating * 2
	if math.Abs(doubled-math.Round(doubled)) > 1e-9 {
		return ErrRatingNotHalfStep
	}

	return nil
}
