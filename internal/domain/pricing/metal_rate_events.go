package pricing

import (
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeMetalRate = "MetalRate"

	EventTypeMetalRateUpdated = "metal_rate.updated"
)

// MetalRateUpdatedEvent is raised when a rate is created, changed or retired
type MetalRateUpdatedEvent struct {
	shared.BaseDomainEvent
	Metal    Metal              `json:"metal"`
	Purity   string             `json:"purity"`
	Market   valueobject.Market `json:"market"`
	OldRate  decimal.Decimal    `json:"old_rate"`
	NewRate  decimal.Decimal    `json:"new_rate"`
	IsActive bool               `json:"is_active"`
}

// NewMetalRateUpdatedEvent creates a MetalRateUpdatedEvent
func NewMetalRateUpdatedEvent(r *MetalRate, oldRate decimal.Decimal) *MetalRateUpdatedEvent {
	return &MetalRateUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMetalRateUpdated, AggregateTypeMetalRate, r.ID),
		Metal:           r.Metal,
		Purity:          r.Purity,
		Market:          r.Market,
		OldRate:         oldRate,
		NewRate:         r.RatePerGram,
		IsActive:        r.IsActive,
	}
}
