package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerimport/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// FamilyRepository defines data access for families.
type FamilyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Family, error)
}

// DuplicateQuery is the exact-match key for duplicate detection.
type DuplicateQuery struct {
	AccountID string
	Date      time.Time
	Amount    decimal.Decimal
	Currency  string
	Name      string
	Exclude   []string
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	// FindDuplicate returns the unclaimed entry matching the query, or
	// (nil, nil) when there is none. When several qualify the one with the
	// lowest ID is returned.
	FindDuplicate(ctx context.Context, tx Transaction, q DuplicateQuery) (*domain.Entry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	CreateBatch(ctx context.Context, tx Transaction, entries []*domain.Entry) error
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByEntry(ctx context.Context, tx Transaction, entryID string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	CreateBatch(ctx context.Context, tx Transaction, transactions []*domain.Transaction) error
	// ListPostedByMerchant returns non-pending, categorized transactions for
	// a merchant within a family, excluding excludeID.
	ListPostedByMerchant(ctx context.Context, familyID, merchantID, excludeID string) ([]*domain.Transaction, error)
	UpdateExtra(ctx context.Context, id string, extra map[string]any) error
}

// MerchantRepository defines data access for merchants.
type MerchantRepository interface {
	// FindOrCreate resolves a merchant by (family, provider merchant ID),
	// creating it when absent. The returned merchant carries the persisted ID.
	FindOrCreate(ctx context.Context, merchant *domain.Merchant) (*domain.Merchant, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}

// MappingRepository resolves import-scoped CSV labels to known records.
// An unmapped label resolves to an empty ID, not an error.
type MappingRepository interface {
	AccountFor(ctx context.Context, importID, label string) (string, error)
	CategoryFor(ctx context.Context, importID, label string) (string, error)
	TagFor(ctx context.Context, importID, label string) (string, error)
}

// ImportRepository defines data access for import runs.
type ImportRepository interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	GetByID(ctx context.Context, id string) (*domain.ImportRun, error)
	Update(ctx context.Context, run *domain.ImportRun) error
}

// RowSource produces the parsed rows of one import. Rows may be called more
// than once; each call yields the full sequence again.
type RowSource interface {
	Rows(ctx context.Context) ([]*domain.Row, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time. Injected so suggestion timestamps are
// testable instead of read ambiently.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside tests.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
