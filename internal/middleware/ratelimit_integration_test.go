//go:build integration

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/waxlog/waxlog/internal/cache"
	"github.com/waxlog/waxlog/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRateLimitCache(t *testing.T) (context.Context, *cache.Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Skipf("skipping: Redis not available: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}

// TestUserRateLimitConcurrency verifies the per-user bucket under concurrent
// load. Requires Redis.
func TestUserRateLimitConcurrency(t *testing.T) {
	ctx, c := newRateLimitCache(t)

	userID := "user-concurrent"
	rps := 10
	burst := 5

	var allowed, rejected int64

	// 20 goroutines each making 3 requests.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				result, err := c.CheckUserRateLimit(ctx, userID, rps, burst)
				if err != nil {
					t.Errorf("CheckUserRateLimit error: %v", err)
					return
				}
				if result.Allowed {
					atomic.AddInt64(&allowed, 1)
				} else {
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}

	wg.Wait()

	t.Logf("user rate limit: %d allowed, %d rejected", allowed, rejected)

	// Roughly the burst plus one refill interval should get through.
	if allowed > int64(burst+rps) {
		t.Errorf("too many requests allowed: %d (expected <= %d)", allowed, burst+rps)
	}
	if rejected == 0 {
		t.Error("expected some requests to be rejected")
	}
}

// TestIPRateLimitConcurrency verifies IP-based rate limiting concurrency.
func TestIPRateLimitConcurrency(t *testing.T) {
	ctx, c := newRateLimitCache(t)

	testIP := "192.168.1.100"
	rps := 5
	burst := 3

	var allowed, rejected int64
	var wg sync.WaitGroup

	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, _ := c.CheckIPRateLimit(ctx, testIP, rps, burst)
			if result.Allowed {
				atomic.AddInt64(&allowed, 1)
			} else {
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}

	wg.Wait()

	t.Logf("IP rate limit: %d allowed, %d rejected", allowed, rejected)

	if rejected == 0 {
		t.Error("expected some requests to be rejected")
	}
}

// TestRateLimitHeaders verifies rate limit headers are set correctly.
func TestRateLimitHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRateLimitHeaders(w, 60, 45, time.Now().Add(time.Second))
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-RateLimit-Limit") != "60" {
		t.Errorf("expected X-RateLimit-Limit=60, got %s", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "45" {
		t.Errorf("expected X-RateLimit-Remaining=45, got %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

// Test429Response verifies the rate limit error response format.
func Test429Response(t *testing.T) {
	rec := httptest.NewRecorder()
	writeRateLimitError(rec, 5*time.Second)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON content type")
	}
	if rec.Body.Len() == 0 {
		t.Error("expected error body")
	}
}

// TestRateLimitDisabled verifies requests pass through when disabled.
func TestRateLimitDisabled(t *testing.T) {
	_, c := newRateLimitCache(t)

	cfg := RateLimitConfig{
		Logger:  discardLogger(),
		Cache:   c,
		Enabled: false,
		RPS:     1,
		Burst:   1,
	}

	handler := RateLimitIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/albums", nil)
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
}
