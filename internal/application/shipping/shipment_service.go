package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shipping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// trackingAttempts bounds regeneration of a colliding tracking number
const trackingAttempts = 3

// ShipmentService manages delivery tracking for online bills
type ShipmentService struct {
	repo   shipping.ShipmentRepository
	bills  billing.BillRepository
	events shared.EventPublisher
	now    func() time.Time
	logger *zap.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	repo shipping.ShipmentRepository,
	bills billing.BillRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{repo: repo, bills: bills, events: events, now: time.Now, logger: logger}
}

// Create opens a pending shipment for a confirmed online bill.
// The address falls back to the bill's customer address.
func (s *ShipmentService) Create(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	bill, err := s.bills.FindByID(ctx, req.BillID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_BILL", "Bill not found")
		}
		return nil, err
	}
	if bill.Channel != billing.ChannelOnline {
		return nil, shared.NewDomainError("INVALID_BILL", "Only online bills are shipped")
	}
	if bill.Status == billing.BillCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Bill is cancelled")
	}

	existing, err := s.repo.FindByBillID(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	for _, sh := range existing {
		if sh.IsActive && sh.Status != shipping.StatusCancelled && sh.Status != shipping.StatusReturned {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Bill already has an open shipment "+sh.TrackingNumber)
		}
	}

	address := req.Address
	if address == "" {
		address = bill.Customer.Address
	}

	var shipment *shipping.Shipment
	for attempt := 1; ; attempt++ {
		shipment, err = shipping.NewShipment(bill.ID, req.TrackingNumber, req.Carrier, address)
		if err != nil {
			return nil, err
		}
		err = s.repo.Save(ctx, shipment)
		if err == nil {
			break
		}
		// only generated numbers are retried
		if req.TrackingNumber != "" || attempt == trackingAttempts || !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Warn("tracking number collision, regenerating", zap.String("tracking_number", shipment.TrackingNumber))
	}

	s.logger.Info("shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("tracking_number", shipment.TrackingNumber))
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// GetByID returns a shipment with its history
func (s *ShipmentService) GetByID(ctx context.Context, id uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// List returns shipments matching the filter
func (s *ShipmentService) List(ctx context.Context, filter shared.Filter) ([]ShipmentResponse, int64, error) {
	shipments, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ShipmentResponse, len(shipments))
	for i := range shipments {
		out[i] = ToShipmentResponse(&shipments[i])
	}
	return out, total, nil
}

// UpdateStatus moves a shipment along its lifecycle and records the event
func (s *ShipmentService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*ShipmentResponse, error) {
	shipment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	at := s.now()
	if req.OccurredAt != nil {
		at = *req.OccurredAt
	}
	if err := shipment.Advance(shipping.Status(req.Status), req.Location, req.Note, at); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, shipment); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, shipment); err != nil {
		s.logger.Warn("failed to publish shipment events", zap.String("shipment_id", id.String()), zap.Error(err))
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// UpdateCarrier changes carrier details while the shipment is still at the store
func (s *ShipmentService) UpdateCarrier(ctx context.Context, id uuid.UUID, req UpdateCarrierRequest) (*ShipmentResponse, error) {
	shipment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shipment.UpdateCarrier(req.Carrier, req.TrackingNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, shipment); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// Delete soft-deletes a shipment
func (s *ShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := shipment.Deactivate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, shipment)
}

// Track returns the public view of an active shipment
func (s *ShipmentService) Track(ctx context.Context, trackingNumber string) (*TrackingResponse, error) {
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if !shipment.IsActive {
		return nil, shared.ErrNotFound
	}
	resp := ToTrackingResponse(shipment)
	return &resp, nil
}

func (s *ShipmentService) find(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shipment.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Shipment is deleted")
	}
	return shipment, nil
}
