package persistence

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

func preloadBillItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds a bill by ID with its items
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var bill billing.Bill
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadBillItems).
		First(&bill, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &bill, nil
}

// FindByNumber finds a bill by its number
func (r *GormBillRepository) FindByNumber(ctx context.Context, number string) (*billing.Bill, error) {
	var bill billing.Bill
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadBillItems).
		Where("bill_number = ?", number).
		First(&bill).Error; err != nil {
		return nil, notFound(err)
	}
	return &bill, nil
}

// FindAll finds bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, error) {
	var bills []billing.Bill
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Bill{}), filter)
	query = paginate(query, filter, BillSortFields, "created_at")

	if err := query.Preload("Items", preloadBillItems).Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Bill{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByNumberPrefix counts bills, including soft-deleted ones, whose number starts with prefix
func (r *GormBillRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Bill{}).
		Where("bill_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a bill and replaces its items
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, bill); err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(bill.Items))
		for i, item := range bill.Items {
			currentItemIDs[i] = item.ID
		}

		del := tx.Where("bill_id = ?", bill.ID)
		if len(currentItemIDs) > 0 {
			del = del.Where("id NOT IN ?", currentItemIDs)
		}
		if err := del.Delete(&billing.BillItem{}).Error; err != nil {
			return err
		}

		for i := range bill.Items {
			bill.Items[i].BillID = bill.ID
			if err := tx.Save(&bill.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		bill.MarkStored()
	}
	return uniqueViolation(err, "Bill number already exists")
}

func (r *GormBillRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = activeOnly(query, filter)

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(bill_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "channel":
			query = query.Where("channel = ?", value)
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

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
