package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one parsed input row of an import. Date and Amount are required;
// every other field may be empty. Amount is signed (negative for outflows).
type Row struct {
	Date     time.Time
	Amount   decimal.Decimal
	Currency string
	Name     string
	Notes    string
	Category string
	Tags     []string
	Account  string
}
