package events

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DaySummary is the aggregated activity for one UTC day.
type DaySummary struct {
	Date        string           `json:"date"`
	Counts      map[string]int64 `json:"counts"`
	ActiveUsers int64            `json:"active_users"`
}

// Summarizer reads the daily counters the worker maintains.
type Summarizer struct {
	redis *redis.Client
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(client *redis.Client) *Summarizer {
	return &Summarizer{redis: client}
}

// Recent returns one summary per day for the last n days, oldest first.
// Days with no recorded activity come back with empty counts.
func (s *Summarizer) Recent(ctx context.Context, days int) ([]*DaySummary, error) {
	if days <= 0 {
		days = 1
	}

	now := time.Now().UTC()
	summaries := make([]*DaySummary, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")

		counts, err := s.redis.HGetAll(ctx, dailyCountersKey(day)).Result()
		if err != nil {
			return nil, err
		}
		active, err := s.redis.PFCount(ctx, activeUsersKey(day)).Result()
		if err != nil {
			return nil, err
		}

		summary := &DaySummary{
			Date:        day,
			Counts:      make(map[string]int64, len(counts)),
			ActiveUsers: active,
		}
		for kind, raw := range counts {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			summary.Counts[kind] = n
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
