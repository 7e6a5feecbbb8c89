package domain

import "time"

// ExtraKeyCategorySuggestion is the key under which a category suggestion is
// stored in a transaction's Extra bag. A stored suggestion is never
// overwritten by a later computation.
const ExtraKeyCategorySuggestion = "category_suggestion"

// Transaction is the categorizable facet of an Entry. Empty CategoryID or
// MerchantID means unset. FamilyID is denormalized from the owning account
// when a transaction is loaded, so scoped lookups do not need extra joins.
type Transaction struct {
	ID         string
	EntryID    string
	FamilyID   string
	CategoryID string
	MerchantID string
	TagIDs     []string
	Pending    bool
	Transfer   bool
	Extra      map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Categorized reports whether the transaction already has a category.
func (t *Transaction) Categorized() bool {
	return t.CategoryID != ""
}

// HasSuggestion reports whether a category suggestion is already stored in
// the Extra bag.
func (t *Transaction) HasSuggestion() bool {
	if t.Extra == nil {
		return false
	}
	_, ok := t.Extra[ExtraKeyCategorySuggestion]
	return ok
}
