package handler

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/events"
	"github.com/waxlog/waxlog/internal/handler/dto"
	"github.com/waxlog/waxlog/internal/service"
)

// oauthStateCookie carries the CSRF state between the redirect and callback.
const oauthStateCookie = "waxlog_oauth_state"

// AuthHandler handles registration, login and OAuth sign-in.
type AuthHandler struct {
	logger      *slog.Logger
	service     *service.AuthService
	activity    *events.Publisher
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler. frontendURL is where OAuth
// callbacks redirect with the issued token; empty means respond with JSON.
// activity may be nil.
func NewAuthHandler(logger *slog.Logger, svc *service.AuthService, activity *events.Publisher, frontendURL string) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		service:     svc,
		activity:    activity,
		frontendURL: frontendURL,
	}
}

// Register handles account creation.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, token, err := h.service.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID))
	h.activity.Record(events.KindSignup, user.ID)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{Token: token, User: user})
}

// Login handles password login.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: token, User: user})
}

// Me returns the authenticated account.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	user, err := h.service.CurrentUser(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Refresh issues a new token for the current account.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustAuthFromContext(r.Context())

	user, token, err := h.service.Refresh(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: token, User: user})
}

// Logout acknowledges sign-out. Tokens are stateless; clients discard
// theirs and the server has nothing to revoke.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// ProviderStub answers for OAuth providers that are not wired up yet.
// GET /api/v1/auth/spotify, GET /api/v1/auth/apple (+ callbacks)
func (h *AuthHandler) ProviderStub(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "PROVIDER_NOT_SUPPORTED",
		"This sign-in provider is not available yet")
}

// GoogleStart redirects the browser to the Google consent page.
// GET /api/v1/auth/google
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	consentURL, err := h.service.GoogleAuthURL(state)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, consentURL, http.StatusFound)
}

// GoogleCallback exchanges the OAuth code and signs the user in.
// GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Missing authorization code")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "OAuth state mismatch")
		return
	}

	// Clear the state cookie regardless of outcome.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	user, token, err := h.service.HandleGoogleCallback(r.Context(), code)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("google sign-in", slog.String("user_id", user.ID))

	if h.frontendURL != "" {
		redirect := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(token)
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: token, User: user})
}

// randomState returns a hex-encoded random OAuth state value.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
