package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerimport/internal/domain"
)

// Categorizer computes merchant-history category suggestions. Every failure
// inside it is absorbed: Suggest returns nil and SuggestAndStore returns
// false rather than propagating errors to the import run.
type Categorizer struct {
	transactionRepo TransactionRepository
	categoryRepo    CategoryRepository
	cache           Cache
	clock           Clock
	logger          zerolog.Logger
}

// NewCategorizer creates a new Categorizer. cache may be nil.
func NewCategorizer(
	transactionRepo TransactionRepository,
	categoryRepo CategoryRepository,
	cache Cache,
	clock Clock,
	logger zerolog.Logger,
) *Categorizer {
	return &Categorizer{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		cache:           cache,
		clock:           clock,
		logger:          logger,
	}
}

// Suggest computes a category suggestion for the transaction, or nil when no
// suggestion applies. Preconditions are checked in order: the transaction
// must have a merchant, be uncategorized, not pending and not a transfer.
func (c *Categorizer) Suggest(ctx context.Context, t *domain.Transaction) *domain.Suggestion {
	logger := c.logger.With().Str("transaction_id", t.ID).Logger()

	if t.MerchantID == "" {
		logger.Debug().Msg("no merchant assigned, skipping suggestion")
		return nil
	}
	if t.Categorized() {
		logger.Debug().Str("category_id", t.CategoryID).Msg("already categorized, skipping suggestion")
		return nil
	}
	if t.Pending {
		logger.Debug().Msg("pending transaction, skipping suggestion")
		return nil
	}
	if t.Transfer {
		logger.Debug().Msg("transfer transaction, skipping suggestion")
		return nil
	}

	if s := c.cachedSuggestion(ctx, t); s != nil {
		return s
	}

	history, err := c.transactionRepo.ListPostedByMerchant(ctx, t.FamilyID, t.MerchantID, t.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load merchant history")
		return nil
	}

	logger.Debug().Int("history", len(history)).Str("merchant_id", t.MerchantID).Msg("loaded merchant history")

	categoryID, total, matchPercentage, ok := domain.SuggestFromHistory(history)
	if !ok {
		return nil
	}

	category, err := c.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		logger.Error().Err(err).Str("category_id", categoryID).Msg("failed to load suggested category")
		return nil
	}

	suggestion := &domain.Suggestion{
		CategoryID:           category.ID,
		CategoryName:         category.Name,
		Source:               domain.SuggestionSourceMerchantHistory,
		Confidence:           domain.ConfidenceFor(matchPercentage),
		MerchantHistoryCount: total,
		MatchPercentage:      matchPercentage,
		SuggestedAt:          c.clock.Now(),
	}

	c.storeCached(ctx, t, suggestion)

	return suggestion
}

// SuggestAndStore computes a suggestion and merges it into the transaction's
// Extra bag. Returns false without mutation when there is no suggestion,
// when one is already stored (stored suggestions are never overwritten), or
// when persistence fails.
func (c *Categorizer) SuggestAndStore(ctx context.Context, t *domain.Transaction) bool {
	suggestion := c.Suggest(ctx, t)
	if suggestion == nil {
		return false
	}

	if t.HasSuggestion() {
		return false
	}

	return c.store(ctx, t, suggestion)
}

// SuggestForTransaction loads a transaction by ID, computes a suggestion and
// stores it unless one is already present. stored reports whether this call
// wrote the suggestion.
func (c *Categorizer) SuggestForTransaction(ctx context.Context, id string) (suggestion *domain.Suggestion, stored bool, err error) {
	t, err := c.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	suggestion = c.Suggest(ctx, t)
	if suggestion == nil {
		return nil, false, nil
	}

	if t.HasSuggestion() {
		return suggestion, false, nil
	}

	return suggestion, c.store(ctx, t, suggestion), nil
}

func (c *Categorizer) store(ctx context.Context, t *domain.Transaction, suggestion *domain.Suggestion) bool {
	extra := make(map[string]any, len(t.Extra)+1)
	for k, v := range t.Extra {
		extra[k] = v
	}
	extra[domain.ExtraKeyCategorySuggestion] = suggestion.ExtraValue()

	if err := c.transactionRepo.UpdateExtra(ctx, t.ID, extra); err != nil {
		c.logger.Error().Err(err).Str("transaction_id", t.ID).Msg("failed to store category suggestion")
		return false
	}

	t.Extra = extra

	return true
}

func (c *Categorizer) suggestionCacheKey(t *domain.Transaction) string {
	return fmt.Sprintf("suggestion:%s:%s", t.FamilyID, t.MerchantID)
}

func (c *Categorizer) cachedSuggestion(ctx context.Context, t *domain.Transaction) *domain.Suggestion {
	if c.cache == nil {
		return nil
	}

	raw, err := c.cache.Get(ctx, c.suggestionCacheKey(t))
	if err != nil {
		return nil
	}

	var s domain.Suggestion
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}

	return &s
}

func (c *Categorizer) storeCached(ctx context.Context, t *domain.Transaction, s *domain.Suggestion) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, c.suggestionCacheKey(t), raw, SuggestionCacheTTL); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache suggestion")
	}
}
