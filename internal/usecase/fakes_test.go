package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/usecase"
)

// In-memory fakes for the import run tests. The gomock mocks are fine for
// single-call expectations; the orchestrator tests want observable state.

type seqIDGenerator struct {
	n int
}

func seqIDs() *seqIDGenerator {
	return &seqIDGenerator{}
}

func (g *seqIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxManager struct {
	txs []*fakeTx
}

func (m *fakeTxManager) Begin(context.Context) (usecase.Transaction, error) {
	tx := &fakeTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

type passthroughRetrier struct{}

func (passthroughRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

type fakeFamilyRepo struct {
	families map[string]*domain.Family
}

func (r *fakeFamilyRepo) GetByID(_ context.Context, id string) (*domain.Family, error) {
	if f, ok := r.families[id]; ok {
		return f, nil
	}
	return nil, domain.ErrFamilyNotFound
}

type fakeEntryRepo struct {
	entries map[string]*domain.Entry
	created []*domain.Entry
	updated []*domain.Entry
}

func newFakeEntryRepo(entries ...*domain.Entry) *fakeEntryRepo {
	r := &fakeEntryRepo{entries: make(map[string]*domain.Entry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeEntryRepo) FindDuplicate(_ context.Context, _ usecase.Transaction, q usecase.DuplicateQuery) (*domain.Entry, error) {
	excluded := make(map[string]struct{}, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = struct{}{}
	}

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		e := r.entries[id]
		if _, ok := excluded[id]; ok {
			continue
		}
		if e.AccountID == q.AccountID &&
			e.Date.Equal(q.Date) &&
			e.Amount.Equal(q.Amount) &&
			e.Currency == q.Currency &&
			e.Name == q.Name {
			return e, nil
		}
	}

	return nil, nil
}

func (r *fakeEntryRepo) Update(_ context.Context, _ usecase.Transaction, entry *domain.Entry) error {
	r.entries[entry.ID] = entry
	r.updated = append(r.updated, entry)
	return nil
}

func (r *fakeEntryRepo) CreateBatch(_ context.Context, _ usecase.Transaction, entries []*domain.Entry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	r.created = append(r.created, entries...)
	return nil
}

type fakeTransactionRepo struct {
	byEntry map[string]*domain.Transaction
	history map[string][]*domain.Transaction // merchant ID -> posted categorized history
	created []*domain.Transaction
	updated []*domain.Transaction
	extras  map[string]map[string]any
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		byEntry: make(map[string]*domain.Transaction),
		history: make(map[string][]*domain.Transaction),
		extras:  make(map[string]map[string]any),
	}
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	for _, t := range r.byEntry {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) GetByEntry(_ context.Context, _ usecase.Transaction, entryID string) (*domain.Transaction, error) {
	if t, ok := r.byEntry[entryID]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) Update(_ context.Context, _ usecase.Transaction, transaction *domain.Transaction) error {
	r.byEntry[transaction.EntryID] = transaction
	r.updated = append(r.updated, transaction)
	return nil
}

func (r *fakeTransactionRepo) CreateBatch(_ context.Context, _ usecase.Transaction, transactions []*domain.Transaction) error {
	for _, t := range transactions {
		r.byEntry[t.EntryID] = t
	}
	r.created = append(r.created, transactions...)
	return nil
}

func (r *fakeTransactionRepo) ListPostedByMerchant(_ context.Context, _, merchantID, excludeID string) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range r.history[merchantID] {
		if t.ID != excludeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) UpdateExtra(_ context.Context, id string, extra map[string]any) error {
	r.extras[id] = extra
	return nil
}

type fakeMerchantRepo struct {
	byProviderID map[string]*domain.Merchant
}

func newFakeMerchantRepo() *fakeMerchantRepo {
	return &fakeMerchantRepo{byProviderID: make(map[string]*domain.Merchant)}
}

func (r *fakeMerchantRepo) FindOrCreate(_ context.Context, merchant *domain.Merchant) (*domain.Merchant, error) {
	key := merchant.FamilyID + "/" + merchant.ProviderMerchantID
	if existing, ok := r.byProviderID[key]; ok {
		return existing, nil
	}
	r.byProviderID[key] = merchant
	return merchant, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	if c, ok := r.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

type fakeImportRepo struct {
	runs map[string]*domain.ImportRun
}

func newFakeImportRepo(runs ...*domain.ImportRun) *fakeImportRepo {
	r := &fakeImportRepo{runs: make(map[string]*domain.ImportRun)}
	for _, run := range runs {
		r.runs[run.ID] = run
	}
	return r
}

func (r *fakeImportRepo) Create(_ context.Context, run *domain.ImportRun) error {
	r.runs[run.ID] = run
	return nil
}

func (r *fakeImportRepo) GetByID(_ context.Context, id string) (*domain.ImportRun, error) {
	if run, ok := r.runs[id]; ok {
		return run, nil
	}
	return nil, domain.ErrImportNotFound
}

func (r *fakeImportRepo) Update(_ context.Context, run *domain.ImportRun) error {
	r.runs[run.ID] = run
	return nil
}

// fakeMappingRepo resolves labels case-insensitively from fixed maps, the
// way a configured import would.
type fakeMappingRepo struct {
	accounts   map[string]string
	categories map[string]string
	tags       map[string]string
}

func (r *fakeMappingRepo) AccountFor(_ context.Context, _, label string) (string, error) {
	return r.accounts[strings.ToLower(label)], nil
}

func (r *fakeMappingRepo) CategoryFor(_ context.Context, _, label string) (string, error) {
	return r.categories[strings.ToLower(label)], nil
}

func (r *fakeMappingRepo) TagFor(_ context.Context, _, label string) (string, error) {
	return r.tags[strings.ToLower(label)], nil
}

type staticRows []*domain.Row

func (s staticRows) Rows(context.Context) ([]*domain.Row, error) {
	return s, nil
}
