// Command server is the entry point for the social.vim API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialvim/internal/bootstrap"
	"socialvim/internal/config"
	"socialvim/internal/middleware"
	"socialvim/internal/observability"
	"socialvim/internal/server"
)

// @title social.vim API
// @version 1.0
// @description Demo backend for a terminal-themed social network: feeds, posts, comments, direct messages, notifications and settings.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "socialvim-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		middleware.Logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{Seed: cfg.SeedOnStart})
	if err != nil {
		middleware.Logger.Error("Failed to initialize runtime", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		middleware.Logger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		middleware.Logger.Info("Shutting down server", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			middleware.Logger.Error("Server stopped", slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		middleware.Logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(ctx); err != nil {
		middleware.Logger.Error("Tracer shutdown error", slog.String("error", err.Error()))
	}
}
