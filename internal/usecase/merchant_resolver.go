package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerimport/internal/domain"
)

// MerchantResolver derives a stable merchant identity from a display name.
// The same name from the same source always resolves to the same merchant.
type MerchantResolver struct {
	merchantRepo MerchantRepository
	idGen        IDGenerator
	clock        Clock
	logger       zerolog.Logger
}

// NewMerchantResolver creates a new MerchantResolver.
func NewMerchantResolver(merchantRepo MerchantRepository, idGen IDGenerator, clock Clock, logger zerolog.Logger) *MerchantResolver {
	return &MerchantResolver{
		merchantRepo: merchantRepo,
		idGen:        idGen,
		clock:        clock,
		logger:       logger,
	}
}

// Resolve finds or creates the merchant for a display name. An empty name
// resolves to no merchant, and a creation failure is logged and treated the
// same way; the row proceeds with merchant unset either way.
func (r *MerchantResolver) Resolve(ctx context.Context, familyID, name string) *domain.Merchant {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	merchant, err := r.merchantRepo.FindOrCreate(ctx, &domain.Merchant{
		ID:                 r.idGen.Generate(),
		FamilyID:           familyID,
		Name:               name,
		Source:             domain.MerchantSourceCSV,
		ProviderMerchantID: domain.CSVMerchantKey(name),
		CreatedAt:          r.clock.Now(),
		UpdatedAt:          r.clock.Now(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("merchant_name", name).Msg("failed to create merchant")
		return nil
	}

	return merchant
}
