package shipping

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

// Status is the delivery state of a shipment
type Status string

const (
	StatusPending        Status = "pending"
	StatusPacked         Status = "packed"
	StatusShipped        Status = "shipped"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusReturned       Status = "returned"
	StatusCancelled      Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:        {StatusPacked, StatusCancelled},
	StatusPacked:         {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusInTransit, StatusReturned},
	StatusInTransit:      {StatusOutForDelivery, StatusReturned},
	StatusOutForDelivery: {StatusDelivered, StatusReturned},
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPacked, StatusShipped, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Shipment tracks delivery of an online order
type Shipment struct {
	shared.BaseAggregateRoot
	BillID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	TrackingNumber string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	Carrier        string          `gorm:"type:varchar(100)"`
	Address        string          `gorm:"type:text;not null"`
	Status         Status          `gorm:"type:varchar(20);not null;index"`
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Events         []ShipmentEvent `gorm:"foreignKey:ShipmentID"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// ShipmentEvent is one entry of a shipment's tracking history
type ShipmentEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShipmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     Status    `gorm:"type:varchar(20);not null"`
	Location   string    `gorm:"type:varchar(200)"`
	Note       string    `gorm:"type:varchar(500)"`
	OccurredAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentEvent) TableName() string {
	return "shipment_events"
}

// NewShipment creates a pending shipment for a bill. An empty tracking number is generated.
func NewShipment(billID uuid.UUID, trackingNumber, carrier, address string) (*Shipment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Shipment must reference a bill")
	}
	if strings.TrimSpace(address) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))
	if trackingNumber == "" {
		trackingNumber = GenerateTrackingNumber()
	}
	s := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillID:            billID,
		TrackingNumber:    trackingNumber,
		Carrier:           carrier,
		Address:           address,
		Status:            StatusPending,
	}
	s.Events = []ShipmentEvent{s.newEvent(StatusPending, "", "Shipment created", s.CreatedAt)}
	return s, nil
}

// Advance moves the shipment to next and appends a tracking event
func (s *Shipment) Advance(next Status, location, note string, at time.Time) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown shipment status")
	}
	if !s.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot move shipment from "+string(s.Status)+" to "+string(next))
	}
	if at.IsZero() {
		at = time.Now()
	}
	old := s.Status
	s.Status = next
	switch next {
	case StatusShipped:
		s.ShippedAt = &at
	case StatusDelivered:
		s.DeliveredAt = &at
	}
	s.Events = append(s.Events, s.newEvent(next, location, note, at))
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewStatusChangedEvent(s, old, location))
	return nil
}

// UpdateCarrier changes the carrier and tracking number before dispatch
func (s *Shipment) UpdateCarrier(carrier, trackingNumber string) error {
	if s.Status != StatusPending && s.Status != StatusPacked {
		return shared.NewDomainError("INVALID_STATE", "Carrier can only change before the shipment leaves")
	}
	s.Carrier = carrier
	if tn := strings.ToUpper(strings.TrimSpace(trackingNumber)); tn != "" {
		s.TrackingNumber = tn
	}
	s.Touch()
	s.IncrementVersion()
	return nil
}

func (s *Shipment) newEvent(status Status, location, note string, at time.Time) ShipmentEvent {
	return ShipmentEvent{
		ID:         uuid.New(),
		ShipmentID: s.ID,
		Status:     status,
		Location:   location,
		Note:       note,
		OccurredAt: at,
	}
}

// GenerateTrackingNumber returns TRK followed by 10 random digits
func GenerateTrackingNumber() string {
	var b strings.Builder
	b.WriteString("TRK")
	for i := 0; i < 10; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			n = big.NewInt(int64(time.Now().UnixNano() % 10))
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}

const (
	AggregateTypeShipment = "Shipment"

	EventTypeShipmentStatusChanged = "shipment.status_changed"
)

// StatusChangedEvent is published on each status transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	BillID         uuid.UUID `json:"bill_id"`
	TrackingNumber string    `json:"tracking_number"`
	OldStatus      Status    `json:"old_status"`
	NewStatus      Status    `json:"new_status"`
	Location       string    `json:"location,omitempty"`
}

// NewStatusChangedEvent creates a StatusChangedEvent
func NewStatusChangedEvent(s *Shipment, old Status, location string) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentStatusChanged, AggregateTypeShipment, s.ID),
		BillID:          s.BillID,
		TrackingNumber:  s.TrackingNumber,
		OldStatus:       old,
		NewStatus:       s.Status,
		Location:        location,
	}
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Shipment, error)
	FindByBillID(ctx context.Context, billID uuid.UUID) ([]Shipment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, shipment *Shipment) error
}
