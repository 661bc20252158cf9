package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pmsdoc-backend/internal/bootstrap"
	"pmsdoc-backend/internal/shared/config"
	"pmsdoc-backend/internal/shared/server"
	"pmsdoc-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()

	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.load_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		os.Exit(1)
	}

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		telemetry.Info("server.starting", map[string]any{
			"addr":    addr,
			"env":     cfg.Env,
			"tracker": cfg.Tracker,
			"store":   cfg.ObjectStoreType,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("server.failed", map[string]any{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err})
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
