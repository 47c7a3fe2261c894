package persistence

import (
	"context"
	"errors"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMetalRateRepository implements MetalRateRepository and RateLookup using GORM
type GormMetalRateRepository struct {
	db *gorm.DB
}

// NewGormMetalRateRepository creates a new GormMetalRateRepository
func NewGormMetalRateRepository(db *gorm.DB) *GormMetalRateRepository {
	return &GormMetalRateRepository{db: db}
}

// FindByID finds a metal rate by its ID
func (r *GormMetalRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.MetalRate, error) {
	var rate pricing.MetalRate
	if err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rate, nil
}

// FindByKey finds the rate row for a metal, purity and market, active or not
func (r *GormMetalRateRepository) FindByKey(ctx context.Context, key pricing.RateKey) (*pricing.MetalRate, error) {
	var rate pricing.MetalRate
	if err := r.db.WithContext(ctx).
		Where("metal = ? AND purity = ? AND market = ?", key.Metal, key.Purity, key.Market).
		First(&rate).Error; err != nil {
		return nil, notFound(err)
	}
	return &rate, nil
}

// RatePerGram returns the active rate for a key or shared.ErrRateNotFound
func (r *GormMetalRateRepository) RatePerGram(ctx context.Context, key pricing.RateKey) (*pricing.MetalRate, error) {
	var rate pricing.MetalRate
	err := r.db.WithContext(ctx).
		Where("metal = ? AND purity = ? AND market = ? AND is_active = ?", key.Metal, key.Purity, key.Market, true).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrRateNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// FindAll finds all metal rates matching the filter
func (r *GormMetalRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.MetalRate, error) {
	var rates []pricing.MetalRate
	query := r.applyFilter(r.db.WithContext(ctx).Model(&pricing.MetalRate{}), filter)
	if filter.OrderBy == "" {
		query = query.Order("market ASC, metal ASC, purity ASC")
		if filter.Page > 0 && filter.PageSize > 0 {
			query = query.Offset(filter.Offset()).Limit(filter.PageSize)
		}
	} else {
		query = paginate(query, filter, MetalRateSortFields, "effective_at")
	}

	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Count counts metal rates matching the filter
func (r *GormMetalRateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&pricing.MetalRate{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a metal rate
func (r *GormMetalRateRepository) Save(ctx context.Context, rate *pricing.MetalRate) error {
	err := saveVersioned(r.db.WithContext(ctx), rate)
	if err == nil {
		rate.MarkStored()
	}
	return uniqueViolation(err, "A rate for this metal, purity and market already exists")
}

func (r *GormMetalRateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = activeOnly(query, filter)
	for key, value := range filter.Filters {
		switch key {
		case "metal":
			query = query.Where("metal = ?", value)
		case "purity":
			query = query.Where("purity = ?", value)
		case "market":
			query = query.Where("market = ?", value)
		}
	}
	return query
}

var (
	_ pricing.MetalRateRepository = (*GormMetalRateRepository)(nil)
	_ pricing.RateLookup          = (*GormMetalRateRepository)(nil)
)
