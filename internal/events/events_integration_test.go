//go:build integration

package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waxlog/waxlog/internal/cache"
	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/testutil"
)

func newTestRedis(t *testing.T) (context.Context, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

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

	return ctx, c.Client()
}

func TestIntegrationPipeline_EndToEnd(t *testing.T) {
	ctx, client := newTestRedis(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()

	publisher := NewPublisher(client, logger, recorder)
	now := time.Now().UnixMilli()
	for _, p := range []Payload{
		{Kind: KindReview, UserID: "user-a", At: now},
		{Kind: KindReview, UserID: "user-b", At: now},
		{Kind: KindDiary, UserID: "user-a", At: now},
	} {
		if _, err := publisher.Publish(ctx, p); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	worker := NewWorker(client, logger, "test-consumer", recorder)
	worker.SetBlockTimeout(100 * time.Millisecond)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Run(runCtx)
	}()

	summarizer := NewSummarizer(client)
	deadline := time.After(5 * time.Second)
	for {
		summaries, err := summarizer.Recent(ctx, 1)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		today := summaries[0]
		if today.Counts[KindReview] == 2 && today.Counts[KindDiary] == 1 {
			if today.ActiveUsers != 2 {
				t.Errorf("active users = %d, want 2", today.ActiveUsers)
			}
			break
		}

		select {
		case <-deadline:
			t.Fatalf("counters never converged: %+v", today)
		case <-time.After(50 * time.Millisecond):
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := worker.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-errCh; err != nil && err != context.Canceled {
		t.Fatalf("worker run: %v", err)
	}

	snap := recorder.Snapshot()
	if snap.EventsProcessed != 3 {
		t.Errorf("events processed = %d, want 3", snap.EventsProcessed)
	}
}

func TestIntegrationWorker_DeadLettersPoisonMessages(t *testing.T) {
	ctx, client := newTestRedis(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()

	// Not JSON at all.
	if err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		ID:     "*",
		Values: map[string]interface{}{"payload": "{not json"},
	}).Err(); err != nil {
		t.Fatalf("xadd: %v", err)
	}
	// Valid JSON, unknown kind.
	if err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		ID:     "*",
		Values: map[string]interface{}{"payload": `{"k":"click","u":"user-a","t":1}`},
	}).Err(); err != nil {
		t.Fatalf("xadd: %v", err)
	}

	worker := NewWorker(client, logger, "test-consumer", recorder)
	worker.SetBlockTimeout(100 * time.Millisecond)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		_ = worker.Run(runCtx)
	}()

	deadline := time.After(5 * time.Second)
	for {
		n, err := client.XLen(ctx, DeadLetterStreamKey).Result()
		if err != nil && err != redis.Nil {
			t.Fatalf("xlen: %v", err)
		}
		if n == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("dead letter stream has %d messages, want 2", n)
		case <-time.After(50 * time.Millisecond):
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := worker.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if snap := recorder.Snapshot(); snap.EventsDeadLettered != 2 {
		t.Errorf("dead lettered = %d, want 2", snap.EventsDeadLettered)
	}
}
