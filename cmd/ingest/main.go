package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/multierr"

	"github.com/angelmondragon/salesdesk-backend/internal/ingest"
	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/angelmondragon/salesdesk-backend/pkg/db"
	"github.com/angelmondragon/salesdesk-backend/pkg/env"
	"github.com/angelmondragon/salesdesk-backend/pkg/instance"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/metrics"
	"github.com/angelmondragon/salesdesk-backend/pkg/migrate"
	"github.com/angelmondragon/salesdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "ingest"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	source := flag.String("source", "", "dataset location (overrides SALES_INGEST_SOURCE)")
	maxRows := flag.Int("max-rows", 0, "row cap (overrides SALES_INGEST_MAX_ROWS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if *source != "" {
		cfg.Ingest.Source = *source
	}
	if *maxRows > 0 {
		cfg.Ingest.MaxRows = *maxRows
	}

	logg = logger.FromApp("ingest", instance.GetID(), cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "dataset import failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	}

	registry := prometheus.NewRegistry()
	importer, err := ingest.FromConfig(ctx, cfg, dbClient, redisClient, logg, metrics.NewJobMetrics(registry))
	if err != nil {
		return err
	}

	res, err := importer.Run(ctx)
	if gateway := env.Get("PUSHGATEWAY_URL", ""); gateway != "" {
		if pushErr := push.New(gateway, ingest.JobName).Gatherer(registry).PushContext(ctx); pushErr != nil {
			logg.Warn(logg.WithError(ctx, pushErr), "failed to push job metrics")
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("outcome=%s read=%d imported=%d skipped=%d\n", res.Outcome, res.Read, res.Imported, res.Skipped)
	return nil
}
