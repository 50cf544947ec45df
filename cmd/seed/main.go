// Package main seeds the album catalog from MusicBrainz.
//
// One-shot mode ingests a fixed number of releases and exits. With
// -schedule set, the process stays up and runs the priority batches on the
// given cron expression.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/waxlog/waxlog/internal/config"
	"github.com/waxlog/waxlog/internal/metadata"
	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/seeder"
)

func main() {
	var (
		count    = flag.Int("count", 100, "number of albums to ingest")
		batch    = flag.Int("batch", 100, "releases fetched per search page")
		clear    = flag.Bool("clear", false, "delete all albums and tracks before seeding")
		genre    = flag.String("genre", "", "restrict the search to a genre tag")
		country  = flag.String("country", "", "restrict the search to a release country code")
		artist   = flag.String("artist", "", "restrict the search to an artist name")
		schedule = flag.String("schedule", "", "cron expression; run the priority batches on this schedule instead of once")
		demo     = flag.Bool("demo", false, "create the demo account and starter albums when the users table is empty")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	meta := metadata.New(cfg.MetadataUserAgent, cfg.MetadataTimeout)
	s := seeder.New(logger, seeder.NewRepository(db), meta, metrics.NewNoop())

	if *demo {
		if err := s.SeedDemo(ctx); err != nil {
			logger.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := s.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	if *schedule != "" {
		c, err := s.Schedule(*schedule)
		if err != nil {
			logger.Error("invalid schedule", "spec", *schedule, "error", err)
			os.Exit(1)
		}
		logger.Info("running on schedule", "spec", *schedule)
		<-ctx.Done()
		<-c.Stop().Done()
		return
	}

	seeded, err := s.Run(ctx, seeder.Options{
		Count:     *count,
		BatchSize: *batch,
		Clear:     *clear,
		Genre:     *genre,
		Country:   *country,
		Artist:    *artist,
	})
	if err != nil {
		logger.Error("seed failed", "seeded", seeded, "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete", "seeded", seeded)
}
