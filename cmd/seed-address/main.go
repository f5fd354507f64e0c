package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/address"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
)

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

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// The local directory backs S3 so a partial bucket still imports.
	loader := address.NewFileLoader(cfg.Dataset.Dir, logger)
	if cfg.S3.Enabled {
		s3Loader, err := address.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = address.NewFallbackLoader(s3Loader, loader, logger)
		}
	} else {
		logger.Info().Str("dir", cfg.Dataset.Dir).Msg("using local file system for address datasets (S3 disabled)")
	}

	importer := address.NewImporter(
		loader,
		repository.NewAddressRepository(pool, logger),
		repository.NewTxManager(pool, logger),
		logger,
	)
	if _, err := importer.Import(ctx); err != nil {
		return fmt.Errorf("address import failed: %w", err)
	}
	return nil
}
