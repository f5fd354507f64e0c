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

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/metrics"
	"storefront/internal/outbox"
)

// metricsAddr serves the relay's own Prometheus endpoint.
const metricsAddr = ":9102"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Kafka.Enabled() {
		return fmt.Errorf("no kafka brokers configured")
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("starting outbox relay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	writer := outbox.NewKafkaWriter(cfg.Kafka)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close kafka writer")
		}
	}()

	m := metrics.New()
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	relay := outbox.NewRelay(
		outbox.NewStore(pool, logger),
		outbox.NewKafkaPublisher(writer),
		cfg.Kafka.BatchSize,
		cfg.Kafka.PollInterval,
		m,
		logger,
	)
	return relay.Run(ctx)
}
