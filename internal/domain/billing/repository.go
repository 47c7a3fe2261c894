package billing

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByNumber(ctx context.Context, number string) (*Bill, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Bill, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountByNumberPrefix counts bills whose number starts with prefix
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, bill *Bill) error
}

// EstimateRepository defines the interface for estimate persistence
type EstimateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Estimate, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Estimate, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	// FindLapsed returns active draft or sent estimates whose validity ended before now
	FindLapsed(ctx context.Context, now time.Time, limit int) ([]Estimate, error)
	Save(ctx context.Context, estimate *Estimate) error
}
