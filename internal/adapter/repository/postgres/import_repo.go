package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerimport/internal/domain"
)

const createImportSQL = `
INSERT INTO imports (id, family_id, account_id, status, rows_created, rows_updated, error, created_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const getImportByIDSQL = `
SELECT id, family_id, account_id, status, rows_created, rows_updated, error, created_at, completed_at
FROM imports
WHERE id = $1
`

const updateImportSQL = `
UPDATE imports
SET status = $2, rows_created = $3, rows_updated = $4, error = $5, completed_at = $6
WHERE id = $1
`

// ImportRepository implements usecase.ImportRepository.
type ImportRepository struct {
	pool *pgxpool.Pool
}

// NewImportRepository creates a new ImportRepository.
func NewImportRepository(pool *pgxpool.Pool) *ImportRepository {
	return &ImportRepository{pool: pool}
}

// Create creates a new import run.
func (r *ImportRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	_, err := r.pool.Exec(ctx, createImportSQL,
		run.ID,
		run.FamilyID,
		stringToPgText(run.AccountID),
		string(run.Status),
		run.RowsCreated,
		run.RowsUpdated,
		run.Error,
		timeToPgTimestamptz(run.CreatedAt),
		timeToPgTimestamptzOrNull(run.CompletedAt),
	)

	return err
}

// GetByID retrieves an import run by ID.
func (r *ImportRepository) GetByID(ctx context.Context, id string) (*domain.ImportRun, error) {
	var (
		run       domain.ImportRun
		accountID pgtype.Text
		status    string
		created   pgtype.Timestamptz
		completed pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, getImportByIDSQL, id).
		Scan(&run.ID, &run.FamilyID, &accountID, &status, &run.RowsCreated, &run.RowsUpdated, &run.Error, &created, &completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrImportNotFound
		}

		return nil, err
	}

	run.AccountID = pgTextToString(accountID)
	run.Status = domain.ImportStatus(status)
	run.CreatedAt = created.Time
	run.CompletedAt = pgTimestamptzToTime(completed)

	return &run, nil
}

// Update persists the run's status, counters and outcome.
func (r *ImportRepository) Update(ctx context.Context, run *domain.ImportRun) error {
	_, err := r.pool.Exec(ctx, updateImportSQL,
		run.ID,
		string(run.Status),
		run.RowsCreated,
		run.RowsUpdated,
		run.Error,
		timeToPgTimestamptzOrNull(run.CompletedAt),
	)

	return err
}
