package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/address"
	"storefront/internal/category"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/outbox"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/voucher"
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
	logger.Info().Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	m := metrics.New()

	// Repositories
	txManager := repository.NewTxManager(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	bookRepo := repository.NewShippingAddressRepository(pool, logger)
	voucherRepo := repository.NewVoucherRepository(pool, logger)

	// Category descendants are cached in Redis when it is configured.
	resolver := category.NewResolver(categoryRepo, logger)
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to connect to redis, category lookups will not be cached")
		} else {
			defer rdb.Close()
			resolver = category.NewCachedResolver(resolver, rdb, cfg.Redis.TTL, logger)
		}
	} else {
		logger.Info().Msg("redis disabled, category lookups are not cached")
	}
	categories := category.NewHierarchy(categoryRepo, resolver, logger)

	addresses := address.NewHierarchy(addressRepo, logger)
	shipping := pricing.NewEngine(pricing.FeeTableFromConfig(cfg.Shipping), addresses, logger)

	ledger := voucher.NewLedger(voucherRepo, txManager, m, logger)
	admin := voucher.NewAdmin(voucherRepo, logger)

	// Services
	productService := service.NewProductService(productRepo, categories, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Tx:        txManager,
		Orders:    orderRepo,
		Payments:  paymentRepo,
		Products:  productRepo,
		Carts:     cartRepo,
		Vouchers:  voucherRepo,
		Addresses: addresses,
		Shipping:  shipping,
		Ledger:    ledger,
		Events:    outbox.NewStore(pool, logger),
		Topic:     cfg.Kafka.Topic,
		Metrics:   m,
	}, logger)
	bookService := service.NewAddressBookService(service.AddressBookDependencies{
		Tx:        txManager,
		Addresses: addressRepo,
		Book:      bookRepo,
		Tree:      addresses,
	}, logger)
	cartService := service.NewCartService(txManager, cartRepo, productRepo, logger)

	// HTTP
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Vouchers: handler.NewVoucherHandler(admin, ledger, logger),
		Catalog:  handler.NewCatalogHandler(categories, addresses, logger),
		Book:     handler.NewShippingAddressHandler(bookService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
	}, cfg.Auth.APIKey, m, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
