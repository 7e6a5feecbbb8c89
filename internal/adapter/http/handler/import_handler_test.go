package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerimport/internal/adapter/http/dto"
	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/usecase"
)

type importServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateImportInput) (*domain.ImportRun, error)
	getFn    func(ctx context.Context, id string) (*domain.ImportRun, error)
	runFn    func(ctx context.Context, importID string, source usecase.RowSource) (*domain.ImportRun, error)
}

func (s *importServiceStub) Create(ctx context.Context, input usecase.CreateImportInput) (*domain.ImportRun, error) {
	return s.createFn(ctx, input)
}

func (s *importServiceStub) Get(ctx context.Context, id string) (*domain.ImportRun, error) {
	return s.getFn(ctx, id)
}

func (s *importServiceStub) Run(ctx context.Context, importID string, source usecase.RowSource) (*domain.ImportRun, error) {
	return s.runFn(ctx, importID, source)
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestImportHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateImportInput

	h := NewImportHandler(&importServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateImportInput) (*domain.ImportRun, error) {
			captured = input
			return &domain.ImportRun{ID: "run-1", FamilyID: input.FamilyID, Status: domain.ImportStatusPending}, nil
		},
	}, "2006-01-02")

	body, _ := json.Marshal(dto.CreateImportRequest{FamilyID: "fam-1", AccountID: "acc-1"})
	req := httptest.NewRequest(http.MethodPost, "/imports", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if captured.FamilyID != "fam-1" || captured.AccountID != "acc-1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "run-1" || resp.Status != "pending" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestImportHandler_Create_MissingFamily(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateImportInput) (*domain.ImportRun, error) {
			t.Fatal("Create should not be called")
			return nil, nil
		},
	}, "2006-01-02")

	req := httptest.NewRequest(http.MethodPost, "/imports", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandler_Create_InvalidBody(t *testing.T) {
	h := NewImportHandler(&importServiceStub{}, "2006-01-02")

	req := httptest.NewRequest(http.MethodPost, "/imports", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandler_Get(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ImportRun, error) {
			return &domain.ImportRun{ID: id, Status: domain.ImportStatusComplete, RowsCreated: 3}, nil
		},
	}, "2006-01-02")

	req := httptest.NewRequest(http.MethodGet, "/imports/run-1", nil)
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RowsCreated != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestImportHandler_Get_NotFound(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ImportRun, error) {
			return nil, domain.ErrImportNotFound
		},
	}, "2006-01-02")

	req := httptest.NewRequest(http.MethodGet, "/imports/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImportHandler_Run_Success(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		runFn: func(ctx context.Context, importID string, source usecase.RowSource) (*domain.ImportRun, error) {
			rows, err := source.Rows(ctx)
			if err != nil {
				t.Fatalf("source failed: %v", err)
			}
			if len(rows) != 1 || rows[0].Name != "Coffee Shop" {
				t.Fatalf("unexpected rows: %+v", rows)
			}
			return &domain.ImportRun{ID: importID, Status: domain.ImportStatusComplete, RowsCreated: 1}, nil
		},
	}, "2006-01-02")

	body, _ := json.Marshal(dto.RunImportRequest{CSV: "date,amount,name\n2024-05-15,-4.50,Coffee Shop\n"})
	req := httptest.NewRequest(http.MethodPost, "/imports/run-1/run", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestImportHandler_Run_MissingPayload(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		runFn: func(ctx context.Context, importID string, source usecase.RowSource) (*domain.ImportRun, error) {
			t.Fatal("Run should not be called")
			return nil, nil
		},
	}, "2006-01-02")

	req := httptest.NewRequest(http.MethodPost, "/imports/run-1/run", bytes.NewBufferString(`{}`))
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandler_Run_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"already run", domain.ErrImportAlreadyRun, http.StatusConflict},
		{"unmapped account", &domain.MappingError{Row: 2, Label: "Savings"}, http.StatusUnprocessableEntity},
		{"missing required", domain.ErrRowMissingRequired, http.StatusUnprocessableEntity},
		{"not found", domain.ErrImportNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewImportHandler(&importServiceStub{
				runFn: func(ctx context.Context, importID string, source usecase.RowSource) (*domain.ImportRun, error) {
					return nil, tt.err
				},
			}, "2006-01-02")

			body, _ := json.Marshal(dto.RunImportRequest{CSV: "date,amount\n2024-05-15,-1\n"})
			req := httptest.NewRequest(http.MethodPost, "/imports/run-1/run", bytes.NewReader(body))
			req = setChiURLParam(req, "id", "run-1")
			rec := httptest.NewRecorder()

			h.Run(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}
