package dto

import (
	"time"

	"github.com/iho/ledgerimport/internal/domain"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ImportResponse represents an import run in API responses.
type ImportResponse struct {
	ID          string     `json:"id"`
	FamilyID    string     `json:"family_id"`
	AccountID   string     `json:"account_id,omitempty"`
	Status      string     `json:"status"`
	RowsCreated int        `json:"rows_created"`
	RowsUpdated int        `json:"rows_updated"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ImportFromDomain converts a domain import run to a response.
func ImportFromDomain(run *domain.ImportRun) *ImportResponse {
	resp := &ImportResponse{
		ID:          run.ID,
		FamilyID:    run.FamilyID,
		AccountID:   run.AccountID,
		Status:      string(run.Status),
		RowsCreated: run.RowsCreated,
		RowsUpdated: run.RowsUpdated,
		Error:       run.Error,
		CreatedAt:   run.CreatedAt,
	}

	if !run.CompletedAt.IsZero() {
		completedAt := run.CompletedAt
		resp.CompletedAt = &completedAt
	}

	return resp
}

// SuggestionResponse represents a category suggestion in API responses.
type SuggestionResponse struct {
	CategoryID           string  `json:"category_id"`
	CategoryName         string  `json:"category_name"`
	Source               string  `json:"source"`
	Confidence           string  `json:"confidence"`
	MerchantHistoryCount int     `json:"merchant_history_count"`
	MatchPercentage      float64 `json:"match_percentage"`
	Stored               bool    `json:"stored"`
}

// SuggestionFromDomain converts a domain suggestion to a response.
func SuggestionFromDomain(s *domain.Suggestion, stored bool) *SuggestionResponse {
	return &SuggestionResponse{
		CategoryID:           s.CategoryID,
		CategoryName:         s.CategoryName,
		Source:               s.Source,
		Confidence:           string(s.Confidence),
		MerchantHistoryCount: s.MerchantHistoryCount,
		MatchPercentage:      s.MatchPercentage,
		Stored:               stored,
	}
}
