package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerimport/internal/domain"
)

const getAccountByIDSQL = `
SELECT id, family_id, name, currency, created_at, updated_at
FROM accounts
WHERE id = $1
`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var (
		a        domain.Account
		currency pgtype.Text
		created  pgtype.Timestamptz
		updated  pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, getAccountByIDSQL, id).
		Scan(&a.ID, &a.FamilyID, &a.Name, &currency, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	a.Currency = pgTextToString(currency)
	a.CreatedAt = created.Time
	a.UpdatedAt = updated.Time

	return &a, nil
}
