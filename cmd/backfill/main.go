package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent-match/internal/app"
	"talent-match/internal/config"
	"talent-match/internal/domain/matching"
	"talent-match/internal/logger"
	"talent-match/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	direction := flag.String("direction", string(matching.DirectionSeekerToPosting), "c2j or j2c")
	tenant := flag.String("tenant", "", "tenant scope, empty for the shared data set")
	topK := flag.Int("top-k", 0, "results kept per member, 0 for the configured default")
	locationFilter := flag.Bool("location-filter", false, "warm the location-filtered cache key variant")
	limit := flag.Int("limit", 0, "max members visited, 0 for all")
	force := flag.Bool("force", false, "recompute even when a fresh entry exists")
	maxAge := flag.Int("max-age", 0, "skip-rule freshness window in seconds, 0 for the configured TTL, negative to skip any existing entry")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Environment, cfg.App.Debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	c, err := app.NewContainer(zl, cfg)
	if err != nil {
		zl.Fatal("container init failed", zap.Error(err))
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := c.BackfillUC.Backfill(ctx, usecase.BackfillParams{
		Direction:      matching.Direction(*direction),
		TenantID:       *tenant,
		TopK:           *topK,
		LocationFilter: *locationFilter,
		Limit:          *limit,
		Force:          *force,
		MaxAge:         time.Duration(*maxAge) * time.Second,
	})
	if err != nil {
		zl.Fatal("backfill failed", zap.Error(err),
			zap.String("run_id", summary.RunID))
	}

	zl.Info("backfill complete",
		zap.String("run_id", summary.RunID),
		zap.Int("processed", summary.Processed),
		zap.Int("computed", summary.Computed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors))
}
