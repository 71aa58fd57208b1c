package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/koyamadev/stockkeeper-backend/api/routes"
	"github.com/koyamadev/stockkeeper-backend/internal/aggregation"
	"github.com/koyamadev/stockkeeper-backend/internal/auth"
	"github.com/koyamadev/stockkeeper-backend/internal/export"
	"github.com/koyamadev/stockkeeper-backend/internal/forecast"
	"github.com/koyamadev/stockkeeper-backend/internal/insights"
	"github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/internal/products"
	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	"github.com/koyamadev/stockkeeper-backend/internal/suppliers"
	"github.com/koyamadev/stockkeeper-backend/pkg/config"
	"github.com/koyamadev/stockkeeper-backend/pkg/db"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
	"github.com/koyamadev/stockkeeper-backend/pkg/migrate"
	"github.com/koyamadev/stockkeeper-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	loc, err := cfg.Report.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to resolve report timezone", err)
		os.Exit(1)
	}

	cache, err := reports.NewCache(redisClient, cfg.Report.CacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create summary cache", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Credentials: cfg.Auth,
		JWTConfig:   cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(suppliers.NewRepository(dbClient.DB()), cache)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()), dbClient, cache)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient, cache)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	builder, err := reports.NewBuilder(loc, aggregation.DefaultNoteClassifier(cfg.Report.ClaimSubstrings, cfg.Report.FactorySubstrings))
	if err != nil {
		logg.Error(context.Background(), "failed to create summary builder", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(ledgerService, builder, cache, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(reportService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	var forecastService forecast.Service
	var insightsService insights.Service
	if cfg.Forecast.APIKey != "" {
		llm, err := forecast.NewClient(cfg.Forecast)
		if err != nil {
			logg.Error(context.Background(), "failed to create forecast client", err)
			os.Exit(1)
		}
		forecastService, err = forecast.NewService(ledgerService, llm, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create forecast service", err)
			os.Exit(1)
		}
		insightsService, err = insights.NewService(reportService, llm, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create insights service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "forecast api key not set, running local projections only")
		forecastService, err = forecast.NewService(ledgerService, nil, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create forecast service", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			ReportLoc: loc,
			Auth:      authService,
			Suppliers: supplierService,
			Products:  productService,
			Ledger:    ledgerService,
			Reports:   reportService,
			Export:    exportService,
			Forecast:  forecastService,
			Insights:  insightsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
