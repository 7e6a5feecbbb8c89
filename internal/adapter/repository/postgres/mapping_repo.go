package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Mapping kinds stored in import_mappings.kind.
const (
	mappingKindAccount  = "account"
	mappingKindCategory = "category"
	mappingKindTag      = "tag"
)

const getMappingSQL = `
SELECT target_id
FROM import_mappings
WHERE import_id = $1
  AND kind = $2
  AND lower(label) = lower($3)
`

// MappingRepository implements usecase.MappingRepository over the mapping
// rows configured for an import. Labels match case-insensitively.
type MappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(pool *pgxpool.Pool) *MappingRepository {
	return &MappingRepository{pool: pool}
}

// AccountFor resolves an account column label. Returns "" when unmapped.
func (r *MappingRepository) AccountFor(ctx context.Context, importID, label string) (string, error) {
	return r.lookup(ctx, importID, mappingKindAccount, label)
}

// CategoryFor resolves a category column label. Returns "" when unmapped.
func (r *MappingRepository) CategoryFor(ctx context.Context, importID, label string) (string, error) {
	return r.lookup(ctx, importID, mappingKindCategory, label)
}

// TagFor resolves a tag column label. Returns "" when unmapped.
func (r *MappingRepository) TagFor(ctx context.Context, importID, label string) (string, error) {
	return r.lookup(ctx, importID, mappingKindTag, label)
}

func (r *MappingRepository) lookup(ctx context.Context, importID, kind, label string) (string, error) {
	var targetID string

	err := r.pool.QueryRow(ctx, getMappingSQL, importID, kind, label).Scan(&targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", err
	}

	return targetID, nil
}
