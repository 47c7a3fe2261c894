package persistence

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEstimateRepository implements EstimateRepository using GORM
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GormEstimateRepository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

func preloadEstimateItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds an estimate by ID with its items
func (r *GormEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Estimate, error) {
	var estimate billing.Estimate
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadEstimateItems).
		First(&estimate, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &estimate, nil
}

// FindAll finds estimates matching the filter
func (r *GormEstimateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Estimate, error) {
	var estimates []billing.Estimate
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Estimate{}), filter)
	query = paginate(query, filter, EstimateSortFields, "created_at")

	if err := query.Preload("Items", preloadEstimateItems).Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Count counts estimates matching the filter
func (r *GormEstimateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Estimate{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByNumberPrefix counts estimates whose number starts with prefix
func (r *GormEstimateRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Estimate{}).
		Where("estimate_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindLapsed returns active draft or sent estimates whose validity ended before now
func (r *GormEstimateRepository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]billing.Estimate, error) {
	var estimates []billing.Estimate
	query := r.db.WithContext(ctx).
		Where("is_active = ? AND status IN ? AND valid_until < ?", true,
			[]billing.EstimateStatus{billing.EstimateDraft, billing.EstimateSent}, now).
		Order("valid_until ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Save creates or updates an estimate and replaces its items
func (r *GormEstimateRepository) Save(ctx context.Context, estimate *billing.Estimate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, estimate); err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(estimate.Items))
		for i, item := range estimate.Items {
			currentItemIDs[i] = item.ID
		}

		del := tx.Where("estimate_id = ?", estimate.ID)
		if len(currentItemIDs) > 0 {
			del = del.Where("id NOT IN ?", currentItemIDs)
		}
		if err := del.Delete(&billing.EstimateItem{}).Error; err != nil {
			return err
		}

		for i := range estimate.Items {
			estimate.Items[i].EstimateID = estimate.ID
			if err := tx.Save(&estimate.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		estimate.MarkStored()
	}
	return uniqueViolation(err, "Estimate number already exists")
}

func (r *GormEstimateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = activeOnly(query, filter)

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(estimate_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "market":
			query = query.Where("market = ?", value)
		case "from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at < ?", t)
			}
		}
	}
	return query
}

// Ensure GormEstimateRepository implements EstimateRepository
var _ billing.EstimateRepository = (*GormEstimateRepository)(nil)
