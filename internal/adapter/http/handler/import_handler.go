package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerimport/internal/adapter/http/dto"
	"github.com/iho/ledgerimport/internal/adapter/rowsource"
	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/usecase"
)

// ImportService is the import use case surface the handler needs.
type ImportService interface {
	Create(ctx context.Context, input usecase.CreateImportInput) (*domain.ImportRun, error)
	Get(ctx context.Context, id string) (*domain.ImportRun, error)
	Run(ctx context.Context, importID string, source usecase.RowSource) (*domain.ImportRun, error)
}

// ImportHandler handles import-related HTTP requests.
type ImportHandler struct {
	importUC   ImportService
	dateFormat string
}

// NewImportHandler creates a new ImportHandler. dateFormat is the default
// CSV date layout used when the request does not specify one.
func NewImportHandler(importUC ImportService, dateFormat string) *ImportHandler {
	return &ImportHandler{
		importUC:   importUC,
		dateFormat: dateFormat,
	}
}

// Create registers a pending import run.
func (h *ImportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.FamilyID == "" {
		writeError(w, http.StatusBadRequest, "missing family ID", "")
		return
	}

	run, err := h.importUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create import", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.ImportFromDomain(run))
}

// Get retrieves an import run by ID.
func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing import ID", "")
		return
	}

	run, err := h.importUC.Get(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get import", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ImportFromDomain(run))
}

// Run executes a pending import against the CSV payload in the body.
func (h *ImportHandler) Run(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing import ID", "")
		return
	}

	var req dto.RunImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.CSV == "" {
		writeError(w, http.StatusBadRequest, "missing csv payload", "")
		return
	}

	dateFormat := req.DateFormat
	if dateFormat == "" {
		dateFormat = h.dateFormat
	}

	source := rowsource.NewCSV([]byte(req.CSV), rowsource.DefaultColumns(), dateFormat)

	run, err := h.importUC.Run(r.Context(), id, source)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "import failed", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ImportFromDomain(run))
}
