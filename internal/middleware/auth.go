package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/cache"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
	Tokens     *auth.TokenIssuer
}

// Auth returns a middleware that authenticates requests with a bearer token.
// It verifies the JWT from the Authorization header, loads the user, and
// injects the auth context into the request. Requests without a valid token
// get 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := resolveAuth(cfg, w, r)
			if !ok {
				return
			}
			if authCtx == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthOptional returns a middleware that authenticates requests when a bearer
// token is present but lets anonymous requests through. Handlers see a nil
// auth context for anonymous callers.
func AuthOptional(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := resolveAuth(cfg, w, r)
			if !ok {
				return
			}
			if authCtx != nil {
				r = r.WithContext(auth.ContextWithAuth(r.Context(), authCtx))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns a middleware that rejects non-admin callers with 403.
// Must be applied after Auth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IsAdminFromContext(r.Context()) {
				logger.Warn("admin access denied",
					slog.String("user_id", auth.UserIDFromContext(r.Context())),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"Admin access required"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveAuth extracts and verifies the bearer token. The second return is
// false when a response has already been written (invalid token or backend
// failure). A (nil, true) result means no token was presented.
func resolveAuth(cfg AuthConfig, w http.ResponseWriter, r *http.Request) (*model.AuthContext, bool) {
	token := extractBearerToken(r)
	if token == "" {
		return nil, true
	}

	// Check cache first to skip signature verification and the user lookup.
	cacheKey := auth.QuickHash(token)
	if authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey); authCtx != nil {
		return authCtx, true
	}

	userID, err := cfg.Tokens.Verify(token)
	if err != nil {
		reason := "invalid_token"
		if errors.Is(err, auth.ErrExpiredToken) {
			reason = "expired_token"
		}
		cfg.Logger.Warn("authentication failed",
			slog.String("reason", reason),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeAuthError(w)
		return nil, false
	}

	user, err := cfg.Repository.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Token for a deleted account.
			cfg.Logger.Warn("authentication failed",
				slog.String("reason", "unknown_user"),
				slog.String("user_id", userID),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			writeAuthError(w)
			return nil, false
		}
		cfg.Logger.Error("database error during auth",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeAuthError(w)
		return nil, false
	}

	authCtx := &model.AuthContext{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)

	return authCtx, true
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing token"}}`))
}
