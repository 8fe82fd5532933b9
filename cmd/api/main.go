package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/brightideas/dispatch-backend/api/routes"
	"github.com/brightideas/dispatch-backend/internal/assignments"
	"github.com/brightideas/dispatch-backend/internal/imports"
	"github.com/brightideas/dispatch-backend/internal/technicians"
	"github.com/brightideas/dispatch-backend/internal/verify"
	"github.com/brightideas/dispatch-backend/pkg/config"
	"github.com/brightideas/dispatch-backend/pkg/db"
	"github.com/brightideas/dispatch-backend/pkg/logger"
	"github.com/brightideas/dispatch-backend/pkg/metrics"
	"github.com/brightideas/dispatch-backend/pkg/migrate"
	"github.com/brightideas/dispatch-backend/pkg/redis"
	"github.com/brightideas/dispatch-backend/pkg/storage/gcs"
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

	loc, err := cfg.App.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to resolve timezone", err)
		os.Exit(1)
	}

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	technicianRepo := technicians.NewRepository(dbClient.DB())
	assignmentRepo := assignments.NewRepository(dbClient.DB())

	technicianService, err := technicians.NewService(technicianRepo, gcsClient, cfg.Photos.PathPrefix)
	if err != nil {
		logg.Error(context.Background(), "failed to create technician service", err)
		os.Exit(1)
	}

	assignmentService, err := assignments.NewService(assignmentRepo, technicianRepo, loc, cfg.Verify.LinkBaseURL)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	verifyService, err := verify.NewService(assignmentService, technicianService, loc, dispatchMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create verify service", err)
		os.Exit(1)
	}

	importService, err := imports.NewService(technicianRepo, assignmentRepo, loc, dispatchMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": cfg.App.Timezone,
	})
	logg.Info(ctx, "starting dispatch api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			registry,
			technicianService,
			assignmentService,
			verifyService,
			importService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
