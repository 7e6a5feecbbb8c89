package usecase

import (
	"context"
	"sort"

	"github.com/iho/ledgerimport/internal/domain"
)

// ClaimSet tracks entry IDs already matched as duplicates within one import
// run. A claimed entry is excluded from later duplicate searches, so two
// identical incoming rows never collapse onto the same existing entry.
type ClaimSet map[string]struct{}

// NewClaimSet creates an empty ClaimSet.
func NewClaimSet() ClaimSet {
	return make(ClaimSet)
}

// Claim records an entry ID as taken.
func (s ClaimSet) Claim(id string) {
	s[id] = struct{}{}
}

// Claimed reports whether an entry ID is already taken.
func (s ClaimSet) Claimed(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the claimed IDs in sorted order.
func (s ClaimSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DuplicateFinder decides whether an incoming row matches an existing,
// unclaimed ledger entry.
type DuplicateFinder struct {
	entryRepo EntryRepository
}

// NewDuplicateFinder creates a new DuplicateFinder.
func NewDuplicateFinder(entryRepo EntryRepository) *DuplicateFinder {
	return &DuplicateFinder{entryRepo: entryRepo}
}

// FindDuplicate looks for an existing entry on the account with the same
// date, signed amount, currency and name, skipping entries already claimed
// in this run. Returns (nil, nil) when no match exists. The caller must
// claim the returned entry's ID before processing the next row.
func (f *DuplicateFinder) FindDuplicate(ctx context.Context, tx Transaction, accountID string, row *domain.Row, currency string, claimed ClaimSet) (*domain.Entry, error) {
	return f.entryRepo.FindDuplicate(ctx, tx, DuplicateQuery{
		AccountID: accountID,
		Date:      row.Date,
		Amount:    row.Amount,
		Currency:  currency,
		Name:      row.Name,
		Exclude:   claimed.IDs(),
	})
}
