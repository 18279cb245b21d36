package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"musicapp/internal/config"
	"musicapp/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobal(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatal().Err(err).Msg("musicapp stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		b.close(closeCtx)
	}()

	if cfg.Storage.SeedDemoCatalog || cfg.Storage.Driver == config.DriverMemory {
		if err := seedDemoCatalog(ctx, b.catalog); err != nil {
			return err
		}
	}

	app, err := newApplication(ctx, cfg, logger, b)
	if err != nil {
		return err
	}

	if app.bus != nil {
		busErr := make(chan error, 1)
		go func() { busErr <- app.bus.Run(ctx) }()
		select {
		case <-app.bus.Running():
		case err := <-busErr:
			return fmt.Errorf("event bus: %w", err)
		case <-time.After(10 * time.Second):
			return errors.New("event bus did not start")
		}
		defer func() {
			if err := app.bus.Close(); err != nil {
				log.Warn().Err(err).Msg("close event bus")
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
