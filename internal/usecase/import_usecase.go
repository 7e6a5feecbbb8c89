package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/infrastructure/metrics"
)

// ImportUseCase drives import runs: for every input row it resolves the
// account and mappings, resolves the merchant, runs duplicate detection and
// either overlays the row onto an existing entry or queues a new one. The
// whole run commits atomically; afterwards suggestions are generated for
// newly created uncategorized transactions.
type ImportUseCase struct {
	txManager       TransactionManager
	retrier         Retrier
	accountRepo     AccountRepository
	familyRepo      FamilyRepository
	entryRepo       EntryRepository
	transactionRepo TransactionRepository
	importRepo      ImportRepository
	mappingRepo     MappingRepository
	merchants       *MerchantResolver
	duplicates      *DuplicateFinder
	categorizer     *Categorizer
	idGen           IDGenerator
	clock           Clock
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	familyRepo FamilyRepository,
	entryRepo EntryRepository,
	transactionRepo TransactionRepository,
	importRepo ImportRepository,
	mappingRepo MappingRepository,
	merchants *MerchantResolver,
	duplicates *DuplicateFinder,
	categorizer *Categorizer,
	idGen IDGenerator,
	clock Clock,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ImportUseCase {
	return &ImportUseCase{
		txManager:       txManager,
		retrier:         retrier,
		accountRepo:     accountRepo,
		familyRepo:      familyRepo,
		entryRepo:       entryRepo,
		transactionRepo: transactionRepo,
		importRepo:      importRepo,
		mappingRepo:     mappingRepo,
		merchants:       merchants,
		duplicates:      duplicates,
		categorizer:     categorizer,
		idGen:           idGen,
		clock:           clock,
		metrics:         m,
		logger:          logger,
	}
}

// CreateImportInput represents input for creating an import run.
type CreateImportInput struct {
	FamilyID  string
	AccountID string
}

// Create registers a pending import run. AccountID is optional; when set,
// every row lands on that account and the account column is ignored.
func (uc *ImportUseCase) Create(ctx context.Context, input CreateImportInput) (*domain.ImportRun, error) {
	if input.AccountID != "" {
		if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
			return nil, err
		}
	}

	run := &domain.ImportRun{
		ID:        uc.idGen.Generate(),
		FamilyID:  input.FamilyID,
		AccountID: input.AccountID,
		Status:    domain.ImportStatusPending,
		CreatedAt: uc.clock.Now(),
	}

	if err := uc.importRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

// Get retrieves an import run by ID.
func (uc *ImportUseCase) Get(ctx context.Context, id string) (*domain.ImportRun, error) {
	return uc.importRepo.GetByID(ctx, id)
}

// Run executes a pending import against the rows of source. Either every
// row's net effect commits together or none does: an unmapped account label
// or any persistence failure aborts the whole batch.
func (uc *ImportUseCase) Run(ctx context.Context, importID string, source RowSource) (*domain.ImportRun, error) {
	run, err := uc.importRepo.GetByID(ctx, importID)
	if err != nil {
		return nil, err
	}

	if run.Status != domain.ImportStatusPending {
		return nil, domain.ErrImportAlreadyRun
	}

	rows, err := source.Rows(ctx)
	if err != nil {
		return nil, uc.fail(ctx, run, err)
	}

	family, err := uc.familyRepo.GetByID(ctx, run.FamilyID)
	if err != nil {
		return nil, uc.fail(ctx, run, err)
	}

	var created []*domain.Transaction

	err = uc.retrier.Retry(ctx, func() error {
		var runErr error
		created, runErr = uc.runOnce(ctx, run, family, rows)
		return runErr
	})
	if err != nil {
		return nil, uc.fail(ctx, run, err)
	}

	run.Status = domain.ImportStatusComplete
	run.CompletedAt = uc.clock.Now()
	if err := uc.importRepo.Update(ctx, run); err != nil {
		return nil, err
	}

	uc.metrics.ImportRuns.WithLabelValues(string(domain.ImportStatusComplete)).Inc()

	// Suggestions are generated after the batch commits so the history reads
	// observe the new entries. Failures are per-row and never fail the run.
	uc.generateSuggestions(ctx, created)

	return run, nil
}

// runOnce processes all rows inside a single transaction. It returns the
// transactions created on the create path so suggestion generation can run
// after commit.
func (uc *ImportUseCase) runOnce(ctx context.Context, run *domain.ImportRun, family *domain.Family, rows []*domain.Row) ([]*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var fixedAccount *domain.Account
	if run.AccountID != "" {
		fixedAccount, err = uc.accountRepo.GetByID(ctx, run.AccountID)
		if err != nil {
			return nil, err
		}
	}

	claimed := NewClaimSet()
	accountsByLabel := make(map[string]*domain.Account)
	now := uc.clock.Now()

	var (
		newEntries          []*domain.Entry
		newTransactions     []*domain.Transaction
		updatedEntries      []*domain.Entry
		updatedTransactions []*domain.Transaction
	)

	for i, row := range rows {
		account := fixedAccount
		if account == nil {
			account, err = uc.resolveAccount(ctx, run.ID, i+1, row.Account, accountsByLabel)
			if err != nil {
				return nil, err
			}
		}

		categoryID, tagIDs, err := uc.resolveMappings(ctx, run.ID, row)
		if err != nil {
			return nil, err
		}

		merchant := uc.merchants.Resolve(ctx, run.FamilyID, row.Name)

		currency := row.Currency
		if currency == "" {
			currency = account.Currency
		}
		if currency == "" {
			currency = family.Currency
		}

		duplicate, err := uc.duplicates.FindDuplicate(ctx, tx, account.ID, row, currency, claimed)
		if err != nil {
			return nil, err
		}

		if duplicate != nil {
			transaction, err := uc.transactionRepo.GetByEntry(ctx, tx, duplicate.ID)
			if err != nil {
				return nil, err
			}

			// Overlay only what the import can supply; date, amount and
			// currency of the matched entry stay untouched.
			if categoryID != "" {
				transaction.CategoryID = categoryID
			}
			if len(tagIDs) > 0 {
				transaction.TagIDs = tagIDs
			}
			if merchant != nil {
				transaction.MerchantID = merchant.ID
			}
			if row.Notes != "" {
				duplicate.Notes = row.Notes
			}
			duplicate.ImportID = run.ID
			duplicate.ImportLocked = true
			duplicate.UpdatedAt = now

			updatedEntries = append(updatedEntries, duplicate)
			updatedTransactions = append(updatedTransactions, transaction)
			claimed.Claim(duplicate.ID)

			continue
		}

		entry := &domain.Entry{
			ID:           uc.idGen.Generate(),
			AccountID:    account.ID,
			ImportID:     run.ID,
			Date:         row.Date,
			Amount:       row.Amount,
			Currency:     currency,
			Name:         row.Name,
			Notes:        row.Notes,
			ImportLocked: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		transaction := &domain.Transaction{
			ID:         uc.idGen.Generate(),
			EntryID:    entry.ID,
			FamilyID:   run.FamilyID,
			CategoryID: categoryID,
			TagIDs:     tagIDs,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if merchant != nil {
			transaction.MerchantID = merchant.ID
		}

		newEntries = append(newEntries, entry)
		newTransactions = append(newTransactions, transaction)
	}

	// Updates first, then one bulk insert for everything new.
	for i, entry := range updatedEntries {
		if err := uc.transactionRepo.Update(ctx, tx, updatedTransactions[i]); err != nil {
			return nil, err
		}
		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if len(newEntries) > 0 {
		if err := uc.entryRepo.CreateBatch(ctx, tx, newEntries); err != nil {
			return nil, err
		}
		if err := uc.transactionRepo.CreateBatch(ctx, tx, newTransactions); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	run.RowsCreated = len(newEntries)
	run.RowsUpdated = len(updatedEntries)

	uc.metrics.RowsCreated.Add(float64(len(newEntries)))
	uc.metrics.RowsUpdated.Add(float64(len(updatedEntries)))
	uc.metrics.DuplicatesClaimed.Add(float64(len(claimed)))

	return newTransactions, nil
}

func (uc *ImportUseCase) resolveAccount(ctx context.Context, importID string, rowNumber int, label string, cache map[string]*domain.Account) (*domain.Account, error) {
	if account, ok := cache[label]; ok {
		return account, nil
	}

	accountID, err := uc.mappingRepo.AccountFor(ctx, importID, label)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, &domain.MappingError{Row: rowNumber, Label: label}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cache[label] = account

	return account, nil
}

// resolveMappings looks up the row's category and tag labels. Unmapped
// labels are treated as absent, not as errors.
func (uc *ImportUseCase) resolveMappings(ctx context.Context, importID string, row *domain.Row) (string, []string, error) {
	var categoryID string
	if row.Category != "" {
		id, err := uc.mappingRepo.CategoryFor(ctx, importID, row.Category)
		if err != nil {
			return "", nil, err
		}
		categoryID = id
	}

	var tagIDs []string
	for _, label := range row.Tags {
		if label == "" {
			continue
		}
		id, err := uc.mappingRepo.TagFor(ctx, importID, label)
		if err != nil {
			return "", nil, err
		}
		if id != "" {
			tagIDs = append(tagIDs, id)
		}
	}

	return categoryID, tagIDs, nil
}

func (uc *ImportUseCase) generateSuggestions(ctx context.Context, created []*domain.Transaction) {
	for _, transaction := range created {
		if transaction.Categorized() || transaction.MerchantID == "" {
			continue
		}

		if uc.categorizer.SuggestAndStore(ctx, transaction) {
			uc.metrics.SuggestionsStored.Inc()
		}
	}
}

func (uc *ImportUseCase) fail(ctx context.Context, run *domain.ImportRun, cause error) error {
	run.Status = domain.ImportStatusFailed
	run.Error = cause.Error()
	run.CompletedAt = uc.clock.Now()

	if err := uc.importRepo.Update(ctx, run); err != nil {
		uc.logger.Error().Err(err).Str("import_id", run.ID).Msg("failed to record import failure")
	}

	uc.metrics.ImportRuns.WithLabelValues(string(domain.ImportStatusFailed)).Inc()

	return cause
}
