// Package main backfills missing catalog data.
//
// It fills in cover art and descriptions for albums that have none, and
// creates diary entries for reviews logged before the diary existed. Each
// pass is opt-in via a flag so runs stay targeted.
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
		covers       = flag.Bool("covers", false, "fetch cover art for albums without one")
		descriptions = flag.Bool("descriptions", false, "fetch descriptions for albums without one")
		diary        = flag.Bool("diary", false, "create diary entries for reviews that lack one")
		dryRun       = flag.Bool("dry-run", false, "report what would change without writing")
	)
	flag.Parse()

	if !*covers && !*descriptions && !*diary {
		flag.Usage()
		os.Exit(2)
	}

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

	if *covers {
		updated, total, err := s.BackfillCovers(ctx, *dryRun)
		if err != nil {
			logger.Error("cover backfill failed", "updated", updated, "total", total, "error", err)
			os.Exit(1)
		}
	}

	if *descriptions {
		updated, total, err := s.BackfillDescriptions(ctx, *dryRun)
		if err != nil {
			logger.Error("description backfill failed", "updated", updated, "total", total, "error", err)
			os.Exit(1)
		}
	}

	if *diary {
		created, total, err := s.BackfillDiary(ctx, *dryRun)
		if err != nil {
			logger.Error("diary backfill failed", "created", created, "total", total, "error", err)
			os.Exit(1)
		}
	}
}
