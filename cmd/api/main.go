package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kittipat-ch/pricebench-backend/api/routes"
	"github.com/kittipat-ch/pricebench-backend/internal/calculation"
	"github.com/kittipat-ch/pricebench-backend/internal/catalog"
	"github.com/kittipat-ch/pricebench-backend/internal/customers"
	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/internal/rules"
	"github.com/kittipat-ch/pricebench-backend/pkg/config"
	"github.com/kittipat-ch/pricebench-backend/pkg/db"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
	"github.com/kittipat-ch/pricebench-backend/pkg/metrics"
	"github.com/kittipat-ch/pricebench-backend/pkg/migrate"
	"github.com/kittipat-ch/pricebench-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	registry := prometheus.NewRegistry()
	calcMetrics := metrics.NewCalculationMetrics(registry)

	masterRepo := masterdata.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	rulesRepo := rules.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())

	masterDataService, err := masterdata.NewService(masterRepo, dbClient, calcMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create master-data service", err)
		os.Exit(1)
	}

	ruleService, err := rules.NewService(rulesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rule service", err)
		os.Exit(1)
	}

	groupResolver, err := customers.NewResolver(customersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer group resolver", err)
		os.Exit(1)
	}

	calculationService, err := calculation.NewService(
		dbClient,
		masterRepo,
		catalogRepo,
		rulesRepo,
		groupResolver,
		customersRepo,
		calcMetrics,
		cfg.Calculation.RoundingPlaces,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create calculation service", err)
		os.Exit(1)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			masterDataService,
			ruleService,
			calculationService,
			customersRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
