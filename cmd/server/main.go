package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/iho/ledgerimport/internal/adapter/http"
	"github.com/iho/ledgerimport/internal/adapter/http/handler"
	"github.com/iho/ledgerimport/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/ledgerimport/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledgerimport/internal/adapter/repository/redis"
	"github.com/iho/ledgerimport/internal/infrastructure/config"
	"github.com/iho/ledgerimport/internal/infrastructure/logger"
	"github.com/iho/ledgerimport/internal/infrastructure/metrics"
	"github.com/iho/ledgerimport/internal/infrastructure/postgres"
	"github.com/iho/ledgerimport/internal/infrastructure/redis"
	"github.com/iho/ledgerimport/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Apply schema migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	familyRepo := postgresRepo.NewFamilyRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	merchantRepo := postgresRepo.NewMerchantRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	mappingRepo := postgresRepo.NewMappingRepository(pool)
	importRepo := postgresRepo.NewImportRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	clock := usecase.SystemClock{}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize use cases
	merchants := usecase.NewMerchantResolver(merchantRepo, idGen, clock, log)
	duplicates := usecase.NewDuplicateFinder(entryRepo)
	categorizer := usecase.NewCategorizer(transactionRepo, categoryRepo, cache, clock, log)
	importUC := usecase.NewImportUseCase(
		txManager,
		retrier,
		accountRepo,
		familyRepo,
		entryRepo,
		transactionRepo,
		importRepo,
		mappingRepo,
		merchants,
		duplicates,
		categorizer,
		idGen,
		clock,
		m,
		log,
	)

	// Initialize handlers
	importHandler := handler.NewImportHandler(importUC, cfg.CSVDateFormat)
	suggestionHandler := handler.NewSuggestionHandler(categorizer)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ImportHandler:     importHandler,
		SuggestionHandler: suggestionHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:            log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
