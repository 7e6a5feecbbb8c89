package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry represents a single ledger entry (a posted or pending movement).
// Date, amount and currency are never changed once the entry exists; an
// import run may only overlay notes and categorical metadata on a match.
type Entry struct {
	ID           string
	AccountID    string
	ImportID     string
	Date         time.Time
	Amount       decimal.Decimal
	Currency     string
	Name         string
	Notes        string
	ImportLocked bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
