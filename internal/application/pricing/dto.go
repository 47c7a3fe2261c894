package pricing

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpsertRateRequest creates a rate or replaces the rate for the same key
type UpsertRateRequest struct {
	Metal       string          `json:"metal" binding:"required,oneof=gold silver platinum"`
	Purity      string          `json:"purity" binding:"required,max=10"`
	Market      string          `json:"market" binding:"required,oneof=IN BH in bh"`
	RatePerGram decimal.Decimal `json:"rate_per_gram" binding:"required"`
	Source      string          `json:"source" binding:"max=100"`
}

// UpdateRateRequest changes the per-gram rate of an existing row
type UpdateRateRequest struct {
	RatePerGram decimal.Decimal `json:"rate_per_gram" binding:"required"`
	Source      string          `json:"source" binding:"max=100"`
}

// RateResponse is a metal rate in API responses
type RateResponse struct {
	ID          uuid.UUID            `json:"id"`
	Metal       pricing.Metal        `json:"metal"`
	Purity      string               `json:"purity"`
	Market      valueobject.Market   `json:"market"`
	RatePerGram decimal.Decimal      `json:"rate_per_gram"`
	Currency    valueobject.Currency `json:"currency"`
	Source      string               `json:"source"`
	EffectiveAt time.Time            `json:"effective_at"`
	IsActive    bool                 `json:"is_active"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Version     int                  `json:"version"`
}

// ToRateResponse converts a domain rate to a response
func ToRateResponse(r *pricing.MetalRate) RateResponse {
	return RateResponse{
		ID:          r.ID,
		Metal:       r.Metal,
		Purity:      r.Purity,
		Market:      r.Market,
		RatePerGram: r.RatePerGram,
		Currency:    r.Currency,
		Source:      r.Source,
		EffectiveAt: r.EffectiveAt,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

// QuoteRequest prices an arbitrary piece. RatePerGram overrides the stored rate when set.
type QuoteRequest struct {
	Metal             string           `json:"metal" binding:"required"`
	Purity            string           `json:"purity" binding:"required"`
	Market            string           `json:"market" binding:"required"`
	GrossWeight       decimal.Decimal  `json:"gross_weight" binding:"required"`
	MakingPct         decimal.Decimal  `json:"making_pct"`
	WastagePct        decimal.Decimal  `json:"wastage_pct"`
	StonePct          decimal.Decimal  `json:"stone_pct"`
	HallmarkingCharge decimal.Decimal  `json:"hallmarking_charge"`
	Quantity          int              `json:"quantity" binding:"omitempty,min=1,max=1000"`
	RatePerGram       *decimal.Decimal `json:"rate_per_gram"`
}

// QuoteResponse is the result of a quote. Price is nil when no rate exists.
type QuoteResponse struct {
	Metal    pricing.Metal        `json:"metal"`
	Purity   string               `json:"purity"`
	Market   valueobject.Market   `json:"market"`
	Currency valueobject.Currency `json:"currency"`
	Quantity int                  `json:"quantity"`
	Price    *PriceResponse       `json:"price"`
}

// PriceResponse is a priced breakdown with every figure fixed to the currency's places
type PriceResponse struct {
	Currency    valueobject.Currency `json:"currency"`
	RatePerGram string               `json:"rate_per_gram"`
	MetalValue  string               `json:"metal_value"`
	Making      string               `json:"making_charges"`
	Wastage     string               `json:"wastage_charges"`
	Stone       string               `json:"stone_charges"`
	Hallmarking string               `json:"hallmarking"`
	Subtotal    string               `json:"subtotal"`
	Tax         string               `json:"tax"`
	Total       string               `json:"total"`
}

// ToPriceResponse renders a breakdown. An unavailable breakdown renders as nil.
func ToPriceResponse(b pricing.Breakdown) *PriceResponse {
	if !b.Available {
		return nil
	}
	places := b.Currency.Places()
	return &PriceResponse{
		Currency:    b.Currency,
		RatePerGram: b.RatePerGram.String(),
		MetalValue:  b.MetalValue.StringFixed(places),
		Making:      b.Making.StringFixed(places),
		Wastage:     b.Wastage.StringFixed(places),
		Stone:       b.Stone.StringFixed(places),
		Hallmarking: b.Hallmarking.StringFixed(places),
		Subtotal:    b.Subtotal.StringFixed(places),
		Tax:         b.Tax.StringFixed(places),
		Total:       b.Total.StringFixed(places),
	}
}
