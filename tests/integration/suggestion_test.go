package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerimport/internal/adapter/http/dto"
	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/tests/testutil"
)

func TestSuggestionEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router, redisClient := newTestRouter(t, ctx, testDB)
	defer redisClient.Close()

	family := testDB.CreateTestFamily(ctx, "suggestions", "USD")
	account := testDB.CreateTestAccount(ctx, family.ID, "Checking", "USD")
	category := testDB.CreateTestCategory(ctx, family.ID, "Coffee")
	merchant := testDB.CreateTestMerchant(ctx, family.ID, "Coffee Shop")

	amount := decimal.RequireFromString("-4.50")
	for i := 0; i < 3; i++ {
		date := time.Date(2024, 4, 1+i, 0, 0, 0, 0, time.UTC)
		testDB.CreateTestEntry(ctx, family.ID, account.ID, date, amount, "USD", "Coffee Shop", category.ID, merchant.ID)
	}

	suggest := func(t *testing.T, transactionID string) *httptest.ResponseRecorder {
		t.Helper()

		r := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/"+transactionID+"/suggestion", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	t.Run("uncategorized transaction with history gets a suggestion", func(t *testing.T) {
		date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		_, transaction := testDB.CreateTestEntry(ctx, family.ID, account.ID, date, amount, "USD", "Coffee Shop", "", merchant.ID)

		w := suggest(t, transaction.ID)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.SuggestionResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.CategoryID != category.ID {
			t.Errorf("expected category %s, got %s", category.ID, resp.CategoryID)
		}
		if resp.Confidence != "high" {
			t.Errorf("expected high confidence, got %s", resp.Confidence)
		}
		if resp.MerchantHistoryCount != 3 {
			t.Errorf("expected history count 3, got %d", resp.MerchantHistoryCount)
		}
		if !resp.Stored {
			t.Error("expected suggestion to be stored")
		}

		var rawExtra []byte
		err := testDB.Pool.QueryRow(ctx,
			`SELECT extra FROM transactions WHERE id = $1`, transaction.ID,
		).Scan(&rawExtra)
		if err != nil {
			t.Fatalf("failed to load transaction extra: %v", err)
		}

		var extra map[string]any
		if err := json.Unmarshal(rawExtra, &extra); err != nil {
			t.Fatalf("failed to parse extra: %v", err)
		}
		if _, ok := extra[domain.ExtraKeyCategorySuggestion]; !ok {
			t.Error("expected suggestion stored in extra")
		}

		// A second call recomputes but never overwrites the stored suggestion.
		w = suggest(t, transaction.ID)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Stored {
			t.Error("expected second call not to store again")
		}
	})

	t.Run("transaction without merchant gets no suggestion", func(t *testing.T) {
		date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
		_, transaction := testDB.CreateTestEntry(ctx, family.ID, account.ID, date, amount, "USD", "Corner Store", "", "")

		w := suggest(t, transaction.ID)
		if w.Code != http.StatusNoContent {
			t.Errorf("expected status %d, got %d: %s", http.StatusNoContent, w.Code, w.Body.String())
		}
	})

	t.Run("unknown transaction returns 404", func(t *testing.T) {
		w := suggest(t, testutil.GenerateID())
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}
