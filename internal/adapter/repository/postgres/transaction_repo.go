package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/usecase"
)

const getTransactionByIDSQL = `
SELECT id, entry_id, family_id, category_id, merchant_id, pending, transfer, extra, created_at, updated_at
FROM transactions
WHERE id = $1
`

const getTransactionByEntrySQL = `
SELECT id, entry_id, family_id, category_id, merchant_id, pending, transfer, extra, created_at, updated_at
FROM transactions
WHERE entry_id = $1
`

const updateTransactionSQL = `
UPDATE transactions
SET category_id = $2, merchant_id = $3, updated_at = $4
WHERE id = $1
`

const updateTransactionExtraSQL = `
UPDATE transactions
SET extra = $2
WHERE id = $1
`

const listPostedByMerchantSQL = `
SELECT id, entry_id, family_id, category_id, merchant_id, pending, transfer, extra, created_at, updated_at
FROM transactions
WHERE family_id = $1
  AND merchant_id = $2
  AND id <> $3
  AND category_id IS NOT NULL
  AND NOT pending
ORDER BY created_at DESC
`

const getTransactionTagsSQL = `
SELECT tag_id FROM transaction_tags WHERE transaction_id = $1 ORDER BY tag_id
`

const deleteTransactionTagsSQL = `
DELETE FROM transaction_tags WHERE transaction_id = $1
`

const insertTransactionTagSQL = `
INSERT INTO transaction_tags (transaction_id, tag_id) VALUES ($1, $2)
`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	transaction, err := scanTransaction(r.pool.QueryRow(ctx, getTransactionByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	if err := r.loadTags(ctx, transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetByEntry retrieves the transaction belonging to an entry.
func (r *TransactionRepository) GetByEntry(ctx context.Context, tx usecase.Transaction, entryID string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	transaction, err := scanTransaction(pgxTx.QueryRow(ctx, getTransactionByEntrySQL, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	var tagIDs []string
	rows, err := pgxTx.Query(ctx, getTransactionTagsSQL, transaction.ID)
	if err != nil {
		return nil, err
	}
	tagIDs, err = collectTagIDs(rows)
	if err != nil {
		return nil, err
	}
	transaction.TagIDs = tagIDs

	return transaction, nil
}

// Update persists the import overlay on an existing transaction, replacing
// its tag set.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, updateTransactionSQL,
		transaction.ID,
		stringToPgText(transaction.CategoryID),
		stringToPgText(transaction.MerchantID),
		timeToPgTimestamptz(transaction.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if _, err := pgxTx.Exec(ctx, deleteTransactionTagsSQL, transaction.ID); err != nil {
		return err
	}
	for _, tagID := range transaction.TagIDs {
		if _, err := pgxTx.Exec(ctx, insertTransactionTagSQL, transaction.ID, tagID); err != nil {
			return err
		}
	}

	return nil
}

// CreateBatch inserts transactions with COPY, then their tag links.
func (r *TransactionRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, transactions []*domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	rows := make([][]any, 0, len(transactions))
	for _, t := range transactions {
		extra, err := marshalExtra(t.Extra)
		if err != nil {
			return err
		}

		rows = append(rows, []any{
			t.ID,
			t.EntryID,
			t.FamilyID,
			stringToPgText(t.CategoryID),
			stringToPgText(t.MerchantID),
			t.Pending,
			t.Transfer,
			extra,
			timeToPgTimestamptz(t.CreatedAt),
			timeToPgTimestamptz(t.UpdatedAt),
		})
	}

	_, err := pgxTx.CopyFrom(ctx,
		pgx.Identifier{"transactions"},
		[]string{"id", "entry_id", "family_id", "category_id", "merchant_id", "pending", "transfer", "extra", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return err
	}

	for _, t := range transactions {
		for _, tagID := range t.TagIDs {
			if _, err := pgxTx.Exec(ctx, insertTransactionTagSQL, t.ID, tagID); err != nil {
				return err
			}
		}
	}

	return nil
}

// ListPostedByMerchant retrieves a family's posted, categorized transactions
// for a merchant, excluding the given transaction.
func (r *TransactionRepository) ListPostedByMerchant(ctx context.Context, familyID, merchantID, excludeID string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, listPostedByMerchantSQL, familyID, merchantID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

// UpdateExtra replaces a transaction's extra bag.
func (r *TransactionRepository) UpdateExtra(ctx context.Context, id string, extra map[string]any) error {
	raw, err := marshalExtra(extra)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, updateTransactionExtraSQL, id, raw)

	return err
}

func (r *TransactionRepository) loadTags(ctx context.Context, transaction *domain.Transaction) error {
	rows, err := r.pool.Query(ctx, getTransactionTagsSQL, transaction.ID)
	if err != nil {
		return err
	}

	tagIDs, err := collectTagIDs(rows)
	if err != nil {
		return err
	}
	transaction.TagIDs = tagIDs

	return nil
}

func collectTagIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, tagID)
	}

	return tagIDs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t          domain.Transaction
		categoryID pgtype.Text
		merchantID pgtype.Text
		extra      []byte
		created    pgtype.Timestamptz
		updated    pgtype.Timestamptz
	)

	err := row.Scan(&t.ID, &t.EntryID, &t.FamilyID, &categoryID, &merchantID, &t.Pending, &t.Transfer, &extra, &created, &updated)
	if err != nil {
		return nil, err
	}

	t.CategoryID = pgTextToString(categoryID)
	t.MerchantID = pgTextToString(merchantID)
	t.CreatedAt = created.Time
	t.UpdatedAt = updated.Time

	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &t.Extra); err != nil {
			return nil, err
		}
	}

	return &t, nil
}

func marshalExtra(extra map[string]any) ([]byte, error) {
	if extra == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(extra)
}
