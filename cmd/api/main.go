package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chemtrade/chemtrade-backend/api/routes"
	"github.com/chemtrade/chemtrade-backend/internal/approvals"
	"github.com/chemtrade/chemtrade-backend/internal/contracts"
	"github.com/chemtrade/chemtrade-backend/internal/dispatch"
	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/internal/pricelists"
	"github.com/chemtrade/chemtrade-backend/internal/vehicles"
	"github.com/chemtrade/chemtrade-backend/internal/warehouses"
	"github.com/chemtrade/chemtrade-backend/pkg/config"
	"github.com/chemtrade/chemtrade-backend/pkg/db"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/metrics"
	"github.com/chemtrade/chemtrade-backend/pkg/migrate"
	"github.com/chemtrade/chemtrade-backend/pkg/redis"
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

	workflowMetrics := metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer)

	ordersRepo := orders.NewRepository(dbClient.DB())
	vehiclesRepo := vehicles.NewRepository(dbClient.DB())
	approvalsRepo := approvals.NewRepository(dbClient.DB())
	contractsRepo := contracts.NewRepository(dbClient.DB())
	pricelistsRepo := pricelists.NewRepository(dbClient.DB())
	warehousesRepo := warehouses.NewRepository(dbClient.DB())

	ordersSvc, err := orders.NewService(ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	priceApplier, err := pricelists.NewApplier(pricelistsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create price list applier", err)
		os.Exit(1)
	}

	approvalsSvc, err := approvals.NewService(
		approvalsRepo,
		dbClient,
		approvals.NewEffectRegistry(ordersSvc, priceApplier),
		ordersSvc,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create approvals service", err)
		os.Exit(1)
	}

	pricelistsSvc, err := pricelists.NewService(pricelistsRepo, approvalsSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create price list service", err)
		os.Exit(1)
	}

	vehiclesSvc, err := vehicles.NewService(vehiclesRepo, dbClient, ordersSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicles service", err)
		os.Exit(1)
	}

	dispatchSvc, err := dispatch.NewService(ordersRepo, vehiclesRepo, dbClient, redisClient, cfg.Dispatch.OrderLockTTL, workflowMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	contractsSvc, err := contracts.NewService(contractsRepo, ordersSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create contracts service", err)
		os.Exit(1)
	}

	warehousesSvc, err := warehouses.NewService(warehousesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouses service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			ordersSvc,
			vehiclesSvc,
			dispatchSvc,
			approvalsSvc,
			contractsSvc,
			pricelistsSvc,
			warehousesSvc,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
