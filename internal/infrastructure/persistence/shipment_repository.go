package persistence

import (
	"context"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shipping"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func preloadShipmentEvents(db *gorm.DB) *gorm.DB {
	return db.Order("occurred_at ASC")
}

// FindByID finds a shipment by ID with its event history
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Preload("Events", preloadShipmentEvents).
		First(&shipment, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &shipment, nil
}

// FindByTrackingNumber finds an active shipment by tracking number
func (r *GormShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Preload("Events", preloadShipmentEvents).
		Where("tracking_number = ? AND is_active = ?", strings.ToUpper(strings.TrimSpace(trackingNumber)), true).
		First(&shipment).Error; err != nil {
		return nil, notFound(err)
	}
	return &shipment, nil
}

// FindByBillID finds the shipments of a bill
func (r *GormShipmentRepository) FindByBillID(ctx context.Context, billID uuid.UUID) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	if err := r.db.WithContext(ctx).
		Preload("Events", preloadShipmentEvents).
		Where("bill_id = ?", billID).
		Order("created_at ASC").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// FindAll finds shipments matching the filter
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	query := r.applyFilter(r.db.WithContext(ctx).Model(&shipping.Shipment{}), filter)
	query = paginate(query, filter, ShipmentSortFields, "created_at")

	if err := query.Preload("Events", preloadShipmentEvents).Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&shipping.Shipment{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a shipment and appends new events.
// Events are append-only so existing rows are never rewritten.
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, shipment); err != nil {
			return err
		}
		for i := range shipment.Events {
			shipment.Events[i].ShipmentID = shipment.ID
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&shipment.Events[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		shipment.MarkStored()
	}
	return uniqueViolation(err, "Tracking number already exists")
}

func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = activeOnly(query, filter)

	if filter.Search != "" {
		query = query.Where("LOWER(tracking_number) LIKE ?", likePattern(filter.Search))
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "bill_id":
			query = query.Where("bill_id = ?", value)
		case "carrier":
			query = query.Where("LOWER(carrier) = LOWER(?)", value)
		}
	}
	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)
