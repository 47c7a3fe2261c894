package pricing

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

// MetalRateRepository persists metal rates
type MetalRateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MetalRate, error)
	// FindByKey returns the rate row for a key, active or not
	FindByKey(ctx context.Context, key RateKey) (*MetalRate, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]MetalRate, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, rate *MetalRate) error
}

// RateLookup resolves the active per-gram rate for a key.
// It returns shared.ErrRateNotFound when no active rate exists.
type RateLookup interface {
	RatePerGram(ctx context.Context, key RateKey) (*MetalRate, error)
}
