package domain

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrFamilyNotFound      = errors.New("family not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrImportNotFound      = errors.New("import not found")

	// Import errors
	ErrAccountNotMapped   = errors.New("account is not mapped to an existing account")
	ErrImportAlreadyRun   = errors.New("import has already been run")
	ErrRowMissingRequired = errors.New("row is missing a required date or amount value")
)

// MappingError aborts an entire import run: a row's account label could not
// be resolved to a known account. Rows are 1-based in the message.
type MappingError struct {
	Row   int
	Label string
}

func (e *MappingError) Error() string {
	label := e.Label
	if label == "" {
		label = "(blank)"
	}
	return fmt.Sprintf("row %d: account %q is not mapped to an existing account", e.Row, label)
}

func (e *MappingError) Unwrap() error {
	return ErrAccountNotMapped
}
