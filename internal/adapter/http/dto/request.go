package dto

import (
	"github.com/iho/ledgerimport/internal/usecase"
)

// CreateImportRequest represents a request to register an import run.
type CreateImportRequest struct {
	FamilyID  string `json:"family_id"`
	AccountID string `json:"account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateImportRequest) ToUseCaseInput() usecase.CreateImportInput {
	return usecase.CreateImportInput{
		FamilyID:  r.FamilyID,
		AccountID: r.AccountID,
	}
}

// RunImportRequest carries the CSV payload for an import run. DateFormat is
// a Go reference layout and may be empty.
type RunImportRequest struct {
	CSV        string `json:"csv"`
	DateFormat string `json:"date_format,omitempty"`
}
