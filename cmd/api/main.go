package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/adapter/gateway"
	httpHandler "payment-reconciliation-engine/internal/adapter/http/handler"
	"payment-reconciliation-engine/internal/adapter/notify"
	pgStorage "payment-reconciliation-engine/internal/adapter/storage/postgres"
	redisStorage "payment-reconciliation-engine/internal/adapter/storage/redis"
	"payment-reconciliation-engine/internal/core/ports"
	"payment-reconciliation-engine/internal/service"
	"payment-reconciliation-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Payment Reconciliation Engine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	txStore := pgStorage.NewTransactionStore(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	targetRepo := pgStorage.NewTargetRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	mutexStore := redisStorage.NewMutexStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize outbound adapters
	gatewayClient := gateway.NewClient(cfg.Gateway, nil, log)
	notifier := notify.NewNotifier(cfg.Platform, nil, log)
	receiptIssuer := notify.NewReceiptIssuer(cfg.Platform, nil, log)

	// Initialize business services
	idGen := service.NewIDGenerator(txStore, mutexStore, log)
	ledger := service.NewWalletLedger(walletRepo, transactor, log)
	dispatcher := service.NewSideEffectDispatcher(txStore, targetRepo, ledger, receiptIssuer, notifier, log)
	reconciler := service.NewReconciler(txStore, dispatcher, log)
	checkoutSvc := service.NewCheckoutService(idGen, txStore, gatewayClient, log)
	poller := service.NewStatusPoller(
		txStore, gatewayClient, reconciler,
		cfg.Jobs.PushWindow, cfg.Jobs.PollInterval, cfg.Jobs.BatchSize, log,
	)
	sweeper := service.NewSideEffectSweeper(
		txStore, dispatcher,
		cfg.Jobs.SweepInterval, cfg.Jobs.BatchSize, log,
	)

	// Background jobs
	go poller.Run(ctx)
	go sweeper.Run(ctx)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CheckoutSvc:    checkoutSvc,
		Reconciler:     reconciler,
		Poller:         poller,
		Store:          txStore,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Frontend:       cfg.Frontend,
		GatewaySecret:  cfg.Gateway.SecretKey,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown: the signal context also stops the poll and sweep jobs.
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
