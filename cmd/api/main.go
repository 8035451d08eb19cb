package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/config"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
	apphttp "github.com/WailSalutem-Health-Care/clinic-datastore/internal/http"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logger := cfg.Log.Logger(os.Stdout).With().Str("service", "clinic-datastore").Logger()

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	provider, err := telemetry.InitProvider(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry unavailable, continuing without export")
		provider = &telemetry.Provider{}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		return err
	}

	publisher := newPublisher(cfg.Messaging, logger)
	defer publisher.Close()

	store := datastore.Bootstrap(ctx, cfg.Datastore,
		datastore.WithLogger(logger),
		datastore.WithRecorder(metrics),
		datastore.WithPublisher(publisher),
	)
	defer store.Close()

	metrics.RecordAvailability(ctx, store.IsAvailable(), store.Diagnosis().Reason.String())

	router := apphttp.SetupRouter(store, apphttp.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger,
		Metrics:        metrics,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Bool("datastore_available", store.IsAvailable()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newPublisher falls back to a no-op publisher when RabbitMQ is disabled or
// unreachable. Events are best effort.
func newPublisher(cfg messaging.Config, logger zerolog.Logger) messaging.PublisherInterface {
	if !cfg.Enabled {
		return messaging.NopPublisher{}
	}
	p, err := messaging.NewPublisher(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("RabbitMQ unavailable, events will not be published")
		return messaging.NopPublisher{}
	}
	return p
}
