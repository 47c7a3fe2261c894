package pricing

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
)

// TaxRateSource returns the GST and VAT percentages configured for a market
type TaxRateSource interface {
	TaxRates(ctx context.Context, market valueobject.Market) (pricing.TaxRates, error)
}

// RateMissRecorder counts lookups that found no active rate
type RateMissRecorder interface {
	RecordRateMiss(ctx context.Context, metal, purity string)
}

// RateInvalidator drops any cached copy of a rate
type RateInvalidator interface {
	Invalidate(ctx context.Context, key pricing.RateKey) error
}
