package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/middleware"
	"github.com/waxlog/waxlog/internal/service"
)

// validate checks request DTO struct tags.
var validate = validator.New()

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeValid decodes the JSON body into dst and checks its validate tags.
// On failure it writes the 4xx response and returns false.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"Invalid fields: "+strings.Join(fields, ", "))
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
		return false
	}
	return true
}

// parsePage reads offset/limit query parameters with defaults.
func parsePage(r *http.Request) (offset, limit int) {
	limit = 20
	query := r.URL.Query()
	if v := query.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	if v := query.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return offset, limit
}

// handleServiceError maps service and validation errors to HTTP responses.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	// Not found
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrAlbumNotFound):
		writeError(w, http.StatusNotFound, "ALBUM_NOT_FOUND", "Album not found")
	case errors.Is(err, service.ErrReviewNotFound):
		writeError(w, http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found")
	case errors.Is(err, service.ErrDiaryEntryNotFound):
		writeError(w, http.StatusNotFound, "DIARY_ENTRY_NOT_FOUND", "Diary entry not found")
	case errors.Is(err, service.ErrListNotFound):
		writeError(w, http.StatusNotFound, "LIST_NOT_FOUND", "List not found")
	case errors.Is(err, service.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")
	case errors.Is(err, service.ErrCollabNotFound):
		writeError(w, http.StatusNotFound, "COLLABORATOR_NOT_FOUND", "Collaborator not found")
	case errors.Is(err, service.ErrCoverNotFound):
		writeError(w, http.StatusNotFound, "COVER_NOT_FOUND", "No cover art found")

	// Permission
	case errors.Is(err, service.ErrNotReviewOwner),
		errors.Is(err, service.ErrNotDiaryOwner),
		errors.Is(err, service.ErrNotListOwner),
		errors.Is(err, service.ErrNotListEditor):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")

	// Conflicts
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")
	case errors.Is(err, service.ErrAlbumAlreadyListed):
		writeError(w, http.StatusConflict, "ALBUM_IN_LIST", "Album already in list")
	case errors.Is(err, service.ErrAlreadyCollab):
		writeError(w, http.StatusConflict, "ALREADY_COLLABORATOR", "User is already a collaborator")

	// Auth
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrGoogleOnlyAccount):
		writeError(w, http.StatusUnauthorized, "GOOGLE_ACCOUNT", "This account uses Google sign-in")
	case errors.Is(err, service.ErrGoogleDisabled):
		writeError(w, http.StatusServiceUnavailable, "GOOGLE_DISABLED", "Google sign-in is not configured")

	// Bad input
	case errors.Is(err, middleware.ErrUsernameTooLong),
		errors.Is(err, middleware.ErrUsernameTooShort),
		errors.Is(err, middleware.ErrUsernameInvalid),
		errors.Is(err, middleware.ErrUsernameReserved),
		errors.Is(err, middleware.ErrBioTooLong),
		errors.Is(err, middleware.ErrReviewTooLong),
		errors.Is(err, middleware.ErrTooManyTags),
		errors.Is(err, middleware.ErrTagInvalid),
		errors.Is(err, middleware.ErrRatingOutOfRange),
		errors.Is(err, middleware.ErrRatingNotHalfStep),
		errors.Is(err, service.ErrCannotFollowSelf),
		errors.Is(err, service.ErrTooManyFavorites),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidExportKind),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrEmptyListTitle):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())

	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
