package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerimport/internal/adapter/http/dto"
	"github.com/iho/ledgerimport/internal/domain"
)

// SuggestionService is the categorizer surface the handler needs.
type SuggestionService interface {
	SuggestForTransaction(ctx context.Context, id string) (*domain.Suggestion, bool, error)
}

// SuggestionHandler handles category suggestion requests.
type SuggestionHandler struct {
	categorizer SuggestionService
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(categorizer SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{categorizer: categorizer}
}

// Suggest computes and stores a category suggestion for a transaction.
// Responds 204 when no suggestion applies.
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	suggestion, stored, err := h.categorizer.SuggestForTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to suggest category", err.Error())

		return
	}

	if suggestion == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuggestionFromDomain(suggestion, stored))
}
