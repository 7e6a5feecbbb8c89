package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerimport/internal/domain"
)

// Upsert keyed on the provider merchant ID so repeated imports of the same
// merchant name converge on one row. The display name follows the latest
// import.
const findOrCreateMerchantSQL = `
INSERT INTO merchants (id, family_id, name, source, provider_merchant_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (family_id, provider_merchant_id)
DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
RETURNING id, family_id, name, source, provider_merchant_id, created_at, updated_at
`

// MerchantRepository implements usecase.MerchantRepository.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository creates a new MerchantRepository.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// FindOrCreate upserts a merchant by (family, provider merchant ID) and
// returns the persisted row, which keeps its original ID on conflict.
func (r *MerchantRepository) FindOrCreate(ctx context.Context, merchant *domain.Merchant) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, findOrCreateMerchantSQL,
		merchant.ID,
		merchant.FamilyID,
		merchant.Name,
		merchant.Source,
		merchant.ProviderMerchantID,
		timeToPgTimestamptz(merchant.CreatedAt),
		timeToPgTimestamptz(merchant.UpdatedAt),
	)

	var (
		m       domain.Merchant
		created pgtype.Timestamptz
		updated pgtype.Timestamptz
	)

	err := row.Scan(&m.ID, &m.FamilyID, &m.Name, &m.Source, &m.ProviderMerchantID, &created, &updated)
	if err != nil {
		return nil, err
	}

	m.CreatedAt = created.Time
	m.UpdatedAt = updated.Time

	return &m, nil
}
