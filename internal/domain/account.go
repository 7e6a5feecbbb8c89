package domain

import "time"

// Account represents a ledger account that entries belong to.
type Account struct {
	ID        string
	FamilyID  string
	Name      string
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Family is the ownership scope for accounts, merchants, categories and tags.
// All duplicate and history lookups are restricted to a single family.
type Family struct {
	ID       string
	Name     string
	Currency string
}
