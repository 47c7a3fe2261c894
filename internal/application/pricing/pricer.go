package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"go.uber.org/zap"
)

// Pricer prices pieces at the live metal rate and the market's taxes
type Pricer struct {
	rates  pricing.RateLookup
	taxes  TaxRateSource
	misses RateMissRecorder
	logger *zap.Logger
}

// NewPricer creates a Pricer. misses may be nil.
func NewPricer(rates pricing.RateLookup, taxes TaxRateSource, misses RateMissRecorder, logger *zap.Logger) *Pricer {
	return &Pricer{rates: rates, taxes: taxes, misses: misses, logger: logger}
}

// PerPiece prices one piece. A missing rate yields an unavailable breakdown, not an error.
func (p *Pricer) PerPiece(ctx context.Context, key pricing.RateKey, charges pricing.Charges) (pricing.Breakdown, error) {
	currency := key.Market.Currency()

	rate, err := p.rates.RatePerGram(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrRateNotFound) {
			p.recordMiss(ctx, key)
			return pricing.Unavailable(currency), nil
		}
		return pricing.Breakdown{}, fmt.Errorf("lookup rate %s: %w", key, err)
	}

	taxes, err := p.taxes.TaxRates(ctx, key.Market)
	if err != nil {
		return pricing.Breakdown{}, fmt.Errorf("load tax rates for %s: %w", key.Market, err)
	}

	return pricing.Calculate(pricing.NewInput(rate.RatePerGram, charges, taxes, currency)), nil
}

// PriceProduct prices one piece of a catalog product
func (p *Pricer) PriceProduct(ctx context.Context, product *catalog.Product) (pricing.Breakdown, error) {
	return p.PerPiece(ctx, product.RateKey(), product.Charges())
}

// Quote prices an ad-hoc piece for the calculator endpoint
func (p *Pricer) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	key, err := pricing.NewRateKey(req.Metal, req.Purity, req.Market)
	if err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	charges := pricing.Charges{
		GrossWeight:     req.GrossWeight,
		MakingPct:       req.MakingPct,
		WastagePct:      req.WastagePct,
		StonePct:        req.StonePct,
		HallmarkingFlat: req.HallmarkingCharge,
	}
	if err := charges.Validate(); err != nil {
		return nil, err
	}

	var perPiece pricing.Breakdown
	if req.RatePerGram != nil {
		if !req.RatePerGram.IsPositive() {
			return nil, shared.NewDomainError("INVALID_RATE", "Rate per gram must be greater than zero")
		}
		taxes, err := p.taxes.TaxRates(ctx, key.Market)
		if err != nil {
			return nil, err
		}
		perPiece = pricing.Calculate(pricing.NewInput(*req.RatePerGram, charges, taxes, key.Market.Currency()))
	} else {
		perPiece, err = p.PerPiece(ctx, key, charges)
		if err != nil {
			return nil, err
		}
	}

	return &QuoteResponse{
		Metal:    key.Metal,
		Purity:   key.Purity,
		Market:   key.Market,
		Currency: key.Market.Currency(),
		Quantity: qty,
		Price:    ToPriceResponse(perPiece.Times(qty)),
	}, nil
}

func (p *Pricer) recordMiss(ctx context.Context, key pricing.RateKey) {
	p.logger.Debug("No metal rate for key", zap.String("key", key.String()))
	if p.misses != nil {
		p.misses.RecordRateMiss(ctx, string(key.Metal), key.Purity)
	}
}
