package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voicedoc/internal/auth"
	"voicedoc/internal/config"
	"voicedoc/internal/database"
	"voicedoc/internal/database/migration"
	handlers "voicedoc/internal/http/handler"
	"voicedoc/internal/http/middleware"
	"voicedoc/internal/normalize"
	"voicedoc/internal/otel"
	"voicedoc/internal/pipeline"
	"voicedoc/internal/render"
	"voicedoc/internal/repository/postgres"
	"voicedoc/internal/service"
	"voicedoc/internal/storage"
	"voicedoc/internal/transcribe"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Error("tracing init failed", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	store, err := newStorage(cfg.Storage)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	recordRepo := postgres.NewRecordPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	transcriber := transcribe.NewOpenAI(cfg.OpenAI, store)
	normalizer := normalize.NewOpenAI(cfg.OpenAI)
	renderer := render.NewDocx(store)

	orchestrator := pipeline.NewOrchestrator(recordRepo, transcriber, normalizer, renderer, logger)
	dispatcher := pipeline.NewDispatcher(orchestrator, logger)
	defer dispatcher.Close()

	recordSvc := service.NewRecordService(store, recordRepo, renderer, dispatcher, logger)
	authSvc := auth.NewService(userRepo, cfg.Auth.Secret, cfg.Auth.TokenTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMw, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Error("metrics init failed", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    100 * 1024 * 1024, // audio uploads
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMw.Handler())

	handlers.RegisterRoutes(app, db, authSvc, recordSvc)

	// Metrics are served on their own listener so the API port stays
	// auth-only.
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newStorage(cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Backend == "minio" {
		return storage.NewMinIO(cfg.MinIO)
	}
	return storage.NewLocal(cfg.Dir)
}
