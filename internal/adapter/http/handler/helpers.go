package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/ledgerimport/internal/adapter/http/dto"
	"github.com/iho/ledgerimport/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFamilyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrImportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrImportAlreadyRun):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAccountNotMapped):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRowMissingRequired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
