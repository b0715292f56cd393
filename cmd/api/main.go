// Package main is the entry point for the Ekadashi API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/api"
	"github.com/zapponejosh/ekadashi-api/internal/calendar"
	"github.com/zapponejosh/ekadashi-api/internal/config"
	"github.com/zapponejosh/ekadashi-api/internal/locations"
	"github.com/zapponejosh/ekadashi-api/internal/logger"
)

// shutdownGracePeriod bounds how long in-flight requests may finish.
const shutdownGracePeriod = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	registry, err := locations.Load(cfg.LocationsFile)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	engine := calendar.NewDefault(log)
	handlers := api.NewHandlers(engine, registry, cfg, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Log startup info
	log.Info("starting ekadashi API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("default_location", cfg.DefaultLocation().String()),
		slog.Int("location_presets", registry.Len()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("initiating graceful shutdown", slog.Duration("grace_period", shutdownGracePeriod))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("ekadashi API stopped")
	return nil
}
