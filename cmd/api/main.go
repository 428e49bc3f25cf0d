package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/salesdesk-backend/api/routes"
	"github.com/angelmondragon/salesdesk-backend/internal/ingest"
	"github.com/angelmondragon/salesdesk-backend/internal/sales"
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
	started := time.Now()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.FromApp("api", instance.GetID(), cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
	} else {
		logg.Info(ctx, "redis not configured; rate limiting and import lock disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Ingest.OnStart {
		runImport(ctx, cfg, dbClient, redisClient, logg, metrics.NewJobMetrics(registry))
	}

	salesService, err := sales.NewService(sales.NewRepository(dbClient.DB()), logg, metrics.NewQueryMetrics(registry))
	if err != nil {
		logg.Error(ctx, "failed to create sales service", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		Started: started,
		DB:      dbClient,
		Sales:   salesService,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if redisClient != nil {
		deps.Redis = redisClient
		deps.RateLimiter = redisClient
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":   addr,
		"driver": dbClient.Dialect(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
			exitCode = 1
		}
		cancel()
	}

	if err := closeAll(dbClient, redisClient); err != nil {
		logg.Error(logCtx, "error closing resources", err)
		exitCode = 1
	}
	logg.Info(logCtx, "api server stopped")
	os.Exit(exitCode)
}

// runImport loads the dataset before serving. A failed import is logged and
// the server still starts so existing rows stay queryable.
func runImport(ctx context.Context, cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, logg *logger.Logger, m *metrics.JobMetrics) {
	importer, err := ingest.FromConfig(ctx, cfg, dbClient, redisClient, logg, m)
	if err != nil {
		logg.Error(ctx, "failed to configure dataset import", err)
		return
	}
	if _, err := importer.Run(ctx); err != nil {
		logg.Error(ctx, "dataset import failed", err)
	}
}

func closeAll(dbClient *db.Client, redisClient *redis.Client) error {
	var err error
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	return multierr.Append(err, dbClient.Close())
}
