package domain

import (
	"math"
	"time"
)

// Confidence is the tier assigned to a category suggestion.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow is part of the stored suggestion vocabulary but is never
	// produced by SuggestFromHistory: anything under the 50% floor yields no
	// suggestion at all.
	ConfidenceLow Confidence = "low"
)

// SuggestionSourceMerchantHistory marks suggestions derived from a
// merchant's posted transaction history.
const SuggestionSourceMerchantHistory = "merchant_history"

// Suggestion is a computed category recommendation. It is not persisted as
// an entity of its own; it is written once into a transaction's Extra bag.
type Suggestion struct {
	CategoryID           string     `json:"category_id"`
	CategoryName         string     `json:"category_name"`
	Source               string     `json:"source"`
	Confidence           Confidence `json:"confidence"`
	MerchantHistoryCount int        `json:"merchant_history_count"`
	MatchPercentage      float64    `json:"match_percentage"`
	SuggestedAt          time.Time  `json:"suggested_at"`
}

// ExtraValue returns the representation stored under
// ExtraKeyCategorySuggestion in a transaction's Extra bag.
func (s *Suggestion) ExtraValue() map[string]any {
	return map[string]any{
		"category_id":            s.CategoryID,
		"category_name":          s.CategoryName,
		"source":                 s.Source,
		"confidence":             string(s.Confidence),
		"merchant_history_count": s.MerchantHistoryCount,
		"match_percentage":       s.MatchPercentage,
		"suggested_at":           s.SuggestedAt.Format("2006-01-02"),
	}
}

// SuggestFromHistory picks the most frequent category among the given
// categorized history and the share it represents, rounded to one decimal.
// Ties on count break toward the lowest category ID so the result is
// deterministic regardless of iteration order. ok is false when the history
// is empty or the top share is under 50%.
func SuggestFromHistory(history []*Transaction) (categoryID string, total int, matchPercentage float64, ok bool) {
	counts := make(map[string]int, len(history))
	for _, t := range history {
		if t.CategoryID == "" {
			continue
		}
		counts[t.CategoryID]++
		total++
	}

	if total == 0 {
		return "", 0, 0, false
	}

	var topID string
	var topCount int
	for id, count := range counts {
		if count > topCount || (count == topCount && (topID == "" || id < topID)) {
			topID = id
			topCount = count
		}
	}

	matchPercentage = math.Round(float64(topCount)/float64(total)*1000) / 10

	if matchPercentage < 50.0 {
		return "", total, matchPercentage, false
	}

	return topID, total, matchPercentage, true
}

// ConfidenceFor maps a match percentage to a confidence tier.
func ConfidenceFor(matchPercentage float64) Confidence {
	switch {
	case matchPercentage >= 75.0:
		return ConfidenceHigh
	case matchPercentage >= 50.0:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
