package domain

import "time"

// ImportStatus is the lifecycle state of an import run.
type ImportStatus string

const (
	ImportStatusPending  ImportStatus = "pending"
	ImportStatusComplete ImportStatus = "complete"
	ImportStatusFailed   ImportStatus = "failed"
)

// ImportRun groups the entries created or claimed by one import. AccountID
// is set when the import is bound to a single account up front; otherwise
// each row's account label must resolve through a mapping.
type ImportRun struct {
	ID          string
	FamilyID    string
	AccountID   string
	Status      ImportStatus
	RowsCreated int
	RowsUpdated int
	Error       string
	CreatedAt   time.Time
	CompletedAt time.Time
}
