package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"plantation-manager/backend/internal/app"
	"plantation-manager/backend/internal/config"
	"plantation-manager/backend/internal/logging"
	"plantation-manager/backend/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("error closing resources")
		}
	}()

	if err := application.Migrate(); err != nil {
		return err
	}

	var w *worker.Worker
	if cfg.Worker.Enabled {
		if w = application.NewWorker(); w != nil {
			w.Every(cfg.Worker.SweepInterval, worker.QueueMaintenance, worker.JobTypeOverdueSweep, nil)
			w.Start(cfg.Worker.Concurrency)
		} else {
			log.Warn().Msg("worker enabled but redis is disabled, background jobs will not run")
		}
	}

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      application.Router(ctx),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("environment", cfg.Server.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if w != nil {
		w.Stop()
	}
	return nil
}
