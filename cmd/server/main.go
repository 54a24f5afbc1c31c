package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"homedisclose/internal/platform/config"
	"homedisclose/internal/platform/httpserver"
	"homedisclose/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise infrastructure", "error", err)
		os.Exit(1)
	}
	app := buildApp(cfg, log, infra)
	router := newRouter(cfg, log, infra, app)

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadHeaderTimeout)

	log.Info("starting disclosure service",
		"addr", cfg.Server.Addr,
		"environment", cfg.Environment,
		"postgres", infra.db != nil,
		"redis", infra.redis != nil,
		"kafka", infra.kafka != nil,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	// Drain queued ledger entries before the stores go away.
	app.dispatcher.Close()
	infra.Close()
	log.Info("server stopped")
}
