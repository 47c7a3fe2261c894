package pricing

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MetalRate is the per-gram price of a metal at a purity in a market.
// There is one active rate per (metal, purity, market).
type MetalRate struct {
	shared.BaseAggregateRoot
	Metal       Metal                `gorm:"type:varchar(20);not null;uniqueIndex:idx_metal_rate_key,priority:1"`
	Purity      string               `gorm:"type:varchar(10);not null;uniqueIndex:idx_metal_rate_key,priority:2"`
	Market      valueobject.Market   `gorm:"type:varchar(4);not null;uniqueIndex:idx_metal_rate_key,priority:3"`
	RatePerGram decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	Source      string               `gorm:"type:varchar(100)"`
	EffectiveAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MetalRate) TableName() string {
	return "metal_rates"
}

// RateKey identifies a rate
type RateKey struct {
	Metal  Metal
	Purity string
	Market valueobject.Market
}

// NewRateKey validates and normalizes the parts of a rate key
func NewRateKey(metal, purity, market string) (RateKey, error) {
	m, err := ParseMetal(metal)
	if err != nil {
		return RateKey{}, err
	}
	p, err := NormalizePurity(purity)
	if err != nil {
		return RateKey{}, err
	}
	mk, err := valueobject.ParseMarket(market)
	if err != nil {
		return RateKey{}, shared.NewDomainError("INVALID_MARKET", "Market must be IN or BH")
	}
	return RateKey{Metal: m, Purity: p, Market: mk}, nil
}

// String renders the key as metal:purity:market
func (k RateKey) String() string {
	return string(k.Metal) + ":" + k.Purity + ":" + string(k.Market)
}

// NewMetalRate creates a rate for a key
func NewMetalRate(key RateKey, ratePerGram decimal.Decimal, source string) (*MetalRate, error) {
	if err := validateRate(ratePerGram); err != nil {
		return nil, err
	}
	r := &MetalRate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Metal:             key.Metal,
		Purity:            key.Purity,
		Market:            key.Market,
		RatePerGram:       ratePerGram,
		Currency:          key.Market.Currency(),
		Source:            source,
		EffectiveAt:       time.Now(),
	}
	r.AddDomainEvent(NewMetalRateUpdatedEvent(r, decimal.Zero))
	return r, nil
}

// Key returns the rate's key
func (r *MetalRate) Key() RateKey {
	return RateKey{Metal: r.Metal, Purity: r.Purity, Market: r.Market}
}

// SetRate replaces the per-gram rate
func (r *MetalRate) SetRate(ratePerGram decimal.Decimal, source string) error {
	if err := validateRate(ratePerGram); err != nil {
		return err
	}
	old := r.RatePerGram
	r.RatePerGram = ratePerGram
	if source != "" {
		r.Source = source
	}
	r.EffectiveAt = time.Now()
	r.IsActive = true
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewMetalRateUpdatedEvent(r, old))
	return nil
}

// Retire soft-deletes the rate. Pricing for its key becomes unavailable.
func (r *MetalRate) Retire() error {
	if err := r.Deactivate(); err != nil {
		return err
	}
	r.AddDomainEvent(NewMetalRateUpdatedEvent(r, r.RatePerGram))
	return nil
}

func validateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_RATE", "Rate per gram must be greater than zero")
	}
	return nil
}
