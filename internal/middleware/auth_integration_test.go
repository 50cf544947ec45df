//go:build integration

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/cache"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
	"github.com/waxlog/waxlog/internal/testutil"
)

func newAuthTestEnv(t *testing.T) (context.Context, AuthConfig, *model.User) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	user := testutil.NewTestUser(t, "bearer")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	cfg := AuthConfig{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Repository: repo,
		Cache:      c,
		Tokens:     auth.NewTokenIssuer("integration-secret", time.Hour),
	}
	return ctx, cfg, user
}

func echoUserHandler(t *testing.T, wantAuth bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := auth.AuthFromContext(r.Context())
		if wantAuth && authCtx == nil {
			t.Error("expected auth context in handler")
		}
		if !wantAuth && authCtx != nil {
			t.Error("expected no auth context in handler")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	_, cfg, user := newAuthTestEnv(t)

	token, err := cfg.Tokens.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := Auth(cfg)(echoUserHandler(t, true))

	// First request resolves through the database, second hits the cache.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestAuth_RejectsMissingAndBadTokens(t *testing.T) {
	_, cfg, _ := newAuthTestEnv(t)

	handler := Auth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for unauthenticated request")
	}))

	for _, header := range []string{"", "Bearer garbage", "Basic abc123"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuth_RejectsExpiredToken(t *testing.T) {
	_, cfg, user := newAuthTestEnv(t)

	expired := auth.NewTokenIssuer("integration-secret", -time.Minute)
	token, err := expired.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := Auth(cfg)(echoUserHandler(t, true))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_RejectsDeletedUser(t *testing.T) {
	_, cfg, _ := newAuthTestEnv(t)

	token, err := cfg.Tokens.Issue("no-such-user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := Auth(cfg)(echoUserHandler(t, true))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthOptional(t *testing.T) {
	_, cfg, user := newAuthTestEnv(t)

	// Anonymous request passes through without auth context.
	anon := AuthOptional(cfg)(echoUserHandler(t, false))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	rec := httptest.NewRecorder()
	anon.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d, want 200", rec.Code)
	}

	// Authenticated request carries the context.
	token, err := cfg.Tokens.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	authed := AuthOptional(cfg)(echoUserHandler(t, true))
	req = httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	authed.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rec.Code)
	}

	// Invalid token is still rejected even on optional routes.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	authed.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(logger)(next)

	// Non-admin gets 403.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/analytics", nil)
	ctx := auth.ContextWithAuth(req.Context(), &model.AuthContext{UserID: "u1", Username: "alice"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", rec.Code)
	}

	// Admin passes.
	ctx = auth.ContextWithAuth(req.Context(), &model.AuthContext{UserID: "u2", Username: "root", IsAdmin: true})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}
