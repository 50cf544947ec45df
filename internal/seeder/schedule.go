package seeder

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// scheduledBatch is one priority slice of a scheduled run.
type scheduledBatch struct {
	Genre   string
	Country string
	Count   int
}

// priorityBatches are seeded before the general batch on every scheduled
// run. Duplicates are skipped, so repeated runs keep adding new albums.
var priorityBatches = []scheduledBatch{
	{"hip hop", "US", 10},
	{"hip hop", "GH", 10},
	{"rap", "US", 10},
	{"rap", "GH", 10},
}

// generalBatchCount is the unfiltered batch appended to each scheduled run.
const generalBatchCount = 10

// RunScheduled seeds the priority genre/country batches, then a general
// batch. Batch errors are logged and do not stop later batches.
func (s *Seeder) RunScheduled(ctx context.Context) int {
	total := 0
	for _, batch := range priorityBatches {
		s.logger.Info("scheduled batch",
			slog.String("genre", batch.Genre),
			slog.String("country", batch.Country),
			slog.Int("count", batch.Count),
		)
		seeded, err := s.Run(ctx, Options{
			Count:     batch.Count,
			BatchSize: 25,
			Genre:     batch.Genre,
			Country:   batch.Country,
		})
		total += seeded
		if err != nil {
			s.logger.Error("scheduled batch failed", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("scheduled general batch", slog.Int("count", generalBatchCount))
	seeded, err := s.Run(ctx, Options{Count: generalBatchCount, BatchSize: 25})
	total += seeded
	if err != nil {
		s.logger.Error("scheduled general batch failed", slog.String("error", err.Error()))
	}

	s.logger.Info("scheduled run complete", slog.Int("seeded", total))
	return total
}

// Schedule registers RunScheduled on the given cron expression and starts
// the scheduler. The caller owns stopping the returned cron.
func (s *Seeder) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		s.RunScheduled(context.Background())
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	s.logger.Info("seed schedule started", slog.String("spec", spec))
	return c, nil
}
