package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerimport/internal/domain"
)

const getFamilyByIDSQL = `
SELECT id, name, currency
FROM families
WHERE id = $1
`

// FamilyRepository implements usecase.FamilyRepository.
type FamilyRepository struct {
	pool *pgxpool.Pool
}

// NewFamilyRepository creates a new FamilyRepository.
func NewFamilyRepository(pool *pgxpool.Pool) *FamilyRepository {
	return &FamilyRepository{pool: pool}
}

// GetByID retrieves a family by ID.
func (r *FamilyRepository) GetByID(ctx context.Context, id string) (*domain.Family, error) {
	var f domain.Family

	err := r.pool.QueryRow(ctx, getFamilyByIDSQL, id).Scan(&f.ID, &f.Name, &f.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFamilyNotFound
		}

		return nil, err
	}

	return &f, nil
}
