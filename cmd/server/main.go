package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/SheetUpload/internal/config"
	"github.com/JonMunkholm/SheetUpload/internal/core"
	"github.com/JonMunkholm/SheetUpload/internal/logging"
	"github.com/JonMunkholm/SheetUpload/internal/metrics"
	"github.com/JonMunkholm/SheetUpload/internal/schema"
	"github.com/JonMunkholm/SheetUpload/internal/store"
	"github.com/JonMunkholm/SheetUpload/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	// Sheet schemas are fixed for the process lifetime
	registry, err := schema.Load(cfg.Schema.ConfigPath)
	if err != nil {
		slog.Error("failed to load sheet schemas", "error", err)
		os.Exit(1)
	}
	slog.Info("sheet schemas loaded", "count", registry.Len(), "names", registry.Names())
	for _, name := range registry.Names() {
		if s, ok := registry.Lookup(name); ok {
			slog.Debug("sheet schema", "name", name, "columns", s.Columns())
		}
	}

	// Connect to the record store
	ctx := context.Background()
	db, err := store.Open(ctx, cfg.Database.URL, store.PostgresOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		slog.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scheme, _, _ := strings.Cut(cfg.Database.URL, "://")
	slog.Info("connected to record store", "backend", scheme)

	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, nil)
		if err := collector.RegisterActiveUploads(cfg.Metrics.Namespace, func() float64 {
			return float64(limiter.ActiveCount())
		}); err != nil {
			slog.Error("failed to register upload gauge", "error", err)
			os.Exit(1)
		}
	}

	opts := []core.OrchestratorOption{core.WithEchoLimit(cfg.Upload.EchoLimit)}
	if collector != nil {
		opts = append(opts, core.WithRecorder(collector))
	}
	orchestrator := core.NewOrchestrator(core.NewProcessor(registry), db, opts...)

	server := web.NewServer(cfg, web.Deps{
		Orchestrator: orchestrator,
		Limiter:      limiter,
		Health:       db,
		Metrics:      collector,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for uploads to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
