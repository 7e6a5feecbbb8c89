package usecase

import "time"

const (
	// SuggestionCacheTTL bounds how long a computed suggestion is reused for
	// a merchant before its history is re-read.
	SuggestionCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
