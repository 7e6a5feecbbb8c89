package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/usecase"
)

const findDuplicateEntrySQL = `
SELECT id, account_id, import_id, entry_date, amount, currency, name, notes, import_locked, created_at, updated_at
FROM entries
WHERE account_id = $1
  AND entry_date = $2
  AND amount = $3
  AND currency = $4
  AND name = $5
  AND NOT (id = ANY($6))
ORDER BY id
LIMIT 1
`

const updateEntrySQL = `
UPDATE entries
SET import_id = $2, notes = $3, import_locked = $4, updated_at = $5
WHERE id = $1
`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// FindDuplicate finds the oldest entry matching the query, skipping the
// excluded IDs. Returns (nil, nil) when there is no match. Pending status
// lives on the transaction, not the entry, and does not narrow the match:
// a pending entry with the same account, date, amount, currency and name
// is still the same movement, so an import row claims it rather than
// creating a second copy that would double-count once it posts.
func (r *EntryRepository) FindDuplicate(ctx context.Context, tx usecase.Transaction, q usecase.DuplicateQuery) (*domain.Entry, error) {
	pgxTx := tx.(*Tx).PgxTx()

	exclude := q.Exclude
	if exclude == nil {
		exclude = []string{}
	}

	row := pgxTx.QueryRow(ctx, findDuplicateEntrySQL,
		q.AccountID,
		timeToPgDate(q.Date),
		decimalToNumeric(q.Amount),
		q.Currency,
		q.Name,
		exclude,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return entry, nil
}

// Update persists the import overlay on an existing entry.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, updateEntrySQL,
		entry.ID,
		stringToPgText(entry.ImportID),
		entry.Notes,
		entry.ImportLocked,
		timeToPgTimestamptz(entry.UpdatedAt),
	)

	return err
}

// CreateBatch inserts entries with COPY.
func (r *EntryRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []*domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.ID,
			e.AccountID,
			stringToPgText(e.ImportID),
			timeToPgDate(e.Date),
			decimalToNumeric(e.Amount),
			e.Currency,
			e.Name,
			e.Notes,
			e.ImportLocked,
			timeToPgTimestamptz(e.CreatedAt),
			timeToPgTimestamptz(e.UpdatedAt),
		})
	}

	_, err := pgxTx.CopyFrom(ctx,
		pgx.Identifier{"entries"},
		[]string{"id", "account_id", "import_id", "entry_date", "amount", "currency", "name", "notes", "import_locked", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)

	return err
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		e        domain.Entry
		importID pgtype.Text
		date     pgtype.Date
		amount   pgtype.Numeric
		created  pgtype.Timestamptz
		updated  pgtype.Timestamptz
	)

	err := row.Scan(&e.ID, &e.AccountID, &importID, &date, &amount, &e.Currency, &e.Name, &e.Notes, &e.ImportLocked, &created, &updated)
	if err != nil {
		return nil, err
	}

	e.ImportID = pgTextToString(importID)
	e.Date = date.Time
	e.Amount = numericToDecimal(amount)
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time

	return &e, nil
}
