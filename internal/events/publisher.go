// Package events provides the activity event pipeline.
//
// Write paths publish lightweight activity events to a Redis stream without
// blocking the request. A background worker consumes the stream and folds
// the events into daily counters that back the realtime slice of the admin
// dashboard.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waxlog/waxlog/internal/metrics"
)

const (
	// StreamKey is the Redis stream for activity events.
	StreamKey = "stream:activity_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:activity_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Activity kinds carried on the stream.
const (
	KindSignup = "signup"
	KindReview = "review"
	KindDiary  = "diary"
	KindList   = "list"
	KindFollow = "follow"
	KindLike   = "like"
)

// Payload is the compressed event format for the Redis stream.
type Payload struct {
	Kind   string `json:"k"`
	UserID string `json:"u"`
	At     int64  `json:"t"` // Unix milliseconds
}

// Publisher enqueues activity events to the Redis stream. A nil Publisher
// is safe to use and drops everything, so callers never branch on wiring.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new activity event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an activity event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event Payload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// Record publishes an event for the given user without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) Record(kind, userID string) {
	if p == nil {
		return
	}

	event := Payload{Kind: kind, UserID: userID, At: time.Now().UnixMilli()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish activity event",
				"kind", event.Kind,
				"error", err,
			)
			p.metrics.IncActivityEventPublished("dropped")
			return
		}

		p.logger.Debug("activity event published",
			"kind", event.Kind,
			"stream_id", streamID,
		)
		p.metrics.IncActivityEventPublished("success")
	}()
}
