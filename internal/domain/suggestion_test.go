package domain

import (
	"testing"
	"time"
)

func historyOf(categoryCounts map[string]int) []*Transaction {
	var history []*Transaction
	for id, count := range categoryCounts {
		for i := 0; i < count; i++ {
			history = append(history, &Transaction{CategoryID: id})
		}
	}
	return history
}

func TestSuggestFromHistory(t *testing.T) {
	tests := []struct {
		name       string
		history    []*Transaction
		wantID     string
		wantTotal  int
		wantPct    float64
		wantOK     bool
	}{
		{
			name:      "clear majority",
			history:   historyOf(map[string]int{"cat-a": 6, "cat-b": 4}),
			wantID:    "cat-a",
			wantTotal: 10,
			wantPct:   60.0,
			wantOK:    true,
		},
		{
			name:      "strong majority",
			history:   historyOf(map[string]int{"cat-a": 8, "cat-b": 2}),
			wantID:    "cat-a",
			wantTotal: 10,
			wantPct:   80.0,
			wantOK:    true,
		},
		{
			name:    "no consensus",
			history: historyOf(map[string]int{"cat-a": 4, "cat-b": 3, "cat-c": 3}),
			wantOK:  false,
		},
		{
			name:    "empty history",
			history: nil,
			wantOK:  false,
		},
		{
			name:    "uncategorized entries ignored",
			history: []*Transaction{{CategoryID: ""}, {CategoryID: ""}},
			wantOK:  false,
		},
		{
			name:      "tie breaks toward lowest category id",
			history:   historyOf(map[string]int{"cat-b": 3, "cat-a": 3}),
			wantID:    "cat-a",
			wantTotal: 6,
			wantPct:   50.0,
			wantOK:    true,
		},
		{
			name:      "single transaction",
			history:   historyOf(map[string]int{"cat-z": 1}),
			wantID:    "cat-z",
			wantTotal: 1,
			wantPct:   100.0,
			wantOK:    true,
		},
		{
			name:      "rounded to one decimal",
			history:   historyOf(map[string]int{"cat-a": 2, "cat-b": 1}),
			wantID:    "cat-a",
			wantTotal: 3,
			wantPct:   66.7,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, total, pct, ok := SuggestFromHistory(tt.history)

			if ok != tt.wantOK {
				t.Fatalf("SuggestFromHistory() ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if id != tt.wantID {
				t.Errorf("category = %q, want %q", id, tt.wantID)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if pct != tt.wantPct {
				t.Errorf("match percentage = %v, want %v", pct, tt.wantPct)
			}
		})
	}
}

func TestSuggestFromHistoryDeterministicTieBreak(t *testing.T) {
	// Map iteration order is randomized; the same tied history must pick the
	// same category on every run.
	for i := 0; i < 50; i++ {
		id, _, _, ok := SuggestFromHistory(historyOf(map[string]int{"cat-9": 2, "cat-1": 2}))
		if !ok || id != "cat-1" {
			t.Fatalf("run %d: got (%q, %v), want (cat-1, true)", i, id, ok)
		}
	}
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Confidence
	}{
		{100.0, ConfidenceHigh},
		{80.0, ConfidenceHigh},
		{75.0, ConfidenceHigh},
		{74.9, ConfidenceMedium},
		{60.0, ConfidenceMedium},
		{50.0, ConfidenceMedium},
		{49.9, ConfidenceLow},
	}

	for _, tt := range tests {
		if got := ConfidenceFor(tt.pct); got != tt.want {
			t.Errorf("ConfidenceFor(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestSuggestionExtraValue(t *testing.T) {
	s := &Suggestion{
		CategoryID:           "cat-1",
		CategoryName:         "Food",
		Source:               SuggestionSourceMerchantHistory,
		Confidence:           ConfidenceMedium,
		MerchantHistoryCount: 10,
		MatchPercentage:      60.0,
		SuggestedAt:          time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
	}

	extra := s.ExtraValue()

	if extra["source"] != SuggestionSourceMerchantHistory {
		t.Errorf("source = %v", extra["source"])
	}
	if extra["confidence"] != "medium" {
		t.Errorf("confidence = %v", extra["confidence"])
	}
	if extra["suggested_at"] != "2024-05-15" {
		t.Errorf("suggested_at = %v", extra["suggested_at"])
	}
}
