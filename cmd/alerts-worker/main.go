package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koyamadev/stockkeeper-backend/internal/aggregation"
	"github.com/koyamadev/stockkeeper-backend/internal/alerts"
	"github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	"github.com/koyamadev/stockkeeper-backend/pkg/config"
	"github.com/koyamadev/stockkeeper-backend/pkg/db"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
	"github.com/koyamadev/stockkeeper-backend/pkg/metrics"
	"github.com/koyamadev/stockkeeper-backend/pkg/migrate"
	"github.com/koyamadev/stockkeeper-backend/pkg/pubsub"
	"github.com/koyamadev/stockkeeper-backend/pkg/redis"
)

const lockKeyFormat = "sk:alerts-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "alerts-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "alerts-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer pubsubClient.Close()

	loc, err := cfg.Report.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to resolve report timezone", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	builder, err := reports.NewBuilder(loc, aggregation.DefaultNoteClassifier(cfg.Report.ClaimSubstrings, cfg.Report.FactorySubstrings))
	if err != nil {
		logg.Error(context.Background(), "failed to create summary builder", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(ledgerService, builder, nil, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	sweepJob, err := alerts.NewShortageSweepJob(alerts.ShortageSweepJobParams{
		Logger:    logg,
		Reports:   reportService,
		Publisher: alerts.NewGCPPublisher(pubsubClient.AlertsPublisher()),
		Metrics:   metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shortage sweep job", err)
		os.Exit(1)
	}

	lock, err := alerts.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts lock", err)
		os.Exit(1)
	}

	service, err := alerts.NewService(alerts.ServiceParams{
		Logger:   logg,
		Registry: alerts.NewRegistry(sweepJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Alerts.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Alerts.Interval.String(),
	})
	logg.Info(ctx, "starting alerts worker")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Alerts.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer metricsServer.Close()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "alerts worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "alerts worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
