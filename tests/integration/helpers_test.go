package integration

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/ledgerimport/internal/adapter/http"
	"github.com/iho/ledgerimport/internal/adapter/http/handler"
	"github.com/iho/ledgerimport/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/ledgerimport/internal/adapter/repository/redis"
	"github.com/iho/ledgerimport/internal/adapter/rowsource"
	"github.com/iho/ledgerimport/internal/infrastructure/metrics"
	infraredis "github.com/iho/ledgerimport/internal/infrastructure/redis"
	"github.com/iho/ledgerimport/internal/usecase"
	"github.com/iho/ledgerimport/tests/testutil"
)

// newTestRouter wires the full HTTP stack against the test database and a
// real redis instance.
func newTestRouter(t *testing.T, ctx context.Context, testDB *testutil.TestDB) (http.Handler, *redis.Client) {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	pool := testDB.Pool
	logger := zerolog.Nop()

	idGen := postgres.NewULIDGenerator()
	clock := usecase.SystemClock{}
	m := metrics.New(prometheus.NewRegistry())

	transactionRepo := postgres.NewTransactionRepository(pool)
	merchants := usecase.NewMerchantResolver(postgres.NewMerchantRepository(pool), idGen, clock, logger)
	categorizer := usecase.NewCategorizer(
		transactionRepo,
		postgres.NewCategoryRepository(pool),
		redisrepo.NewCache(redisClient),
		clock,
		logger,
	)

	importUC := usecase.NewImportUseCase(
		postgres.NewTxManager(pool),
		postgres.NewRetrier(logger),
		postgres.NewAccountRepository(pool),
		postgres.NewFamilyRepository(pool),
		postgres.NewEntryRepository(pool),
		transactionRepo,
		postgres.NewImportRepository(pool),
		postgres.NewMappingRepository(pool),
		merchants,
		usecase.NewDuplicateFinder(postgres.NewEntryRepository(pool)),
		categorizer,
		idGen,
		clock,
		m,
		logger,
	)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		ImportHandler:     handler.NewImportHandler(importUC, rowsource.DefaultDateFormat),
		SuggestionHandler: handler.NewSuggestionHandler(categorizer),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  redisrepo.NewIdempotencyStore(redisClient),
		Logger:            logger,
	})

	return router, redisClient
}
