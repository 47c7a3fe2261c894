package billing

import (
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeBill     = "Bill"
	AggregateTypeEstimate = "Estimate"
)

const (
	EventTypeBillCreated       = "bill.created"
	EventTypeBillPaid          = "bill.paid"
	EventTypeBillCancelled     = "bill.cancelled"
	EventTypeEstimateConverted = "estimate.converted"
)

// BillCreatedEvent is published when a bill is raised
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	BillNumber    string               `json:"bill_number"`
	Channel       Channel              `json:"channel"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email,omitempty"`
	Currency      valueobject.Currency `json:"currency"`
	GrandTotal    decimal.Decimal      `json:"grand_total"`
	ItemCount     int                  `json:"item_count"`
}

// NewBillCreatedEvent creates a BillCreatedEvent
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCreated, AggregateTypeBill, b.ID),
		BillNumber:      b.BillNumber,
		Channel:         b.Channel,
		CustomerName:    b.Customer.Name,
		CustomerEmail:   b.Customer.Email,
		Currency:        b.Currency,
		GrandTotal:      b.Totals.GrandTotal,
		ItemCount:       len(b.Items),
	}
}

// BillPaidEvent is published when payment is recorded
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillNumber    string               `json:"bill_number"`
	PaymentMethod PaymentMethod        `json:"payment_method"`
	Currency      valueobject.Currency `json:"currency"`
	Amount        decimal.Decimal      `json:"amount"`
}

// NewBillPaidEvent creates a BillPaidEvent
func NewBillPaidEvent(b *Bill) *BillPaidEvent {
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaid, AggregateTypeBill, b.ID),
		BillNumber:      b.BillNumber,
		PaymentMethod:   b.PaymentMethod,
		Currency:        b.Currency,
		Amount:          b.Totals.GrandTotal,
	}
}

// BillCancelledEvent is published when a bill is voided
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillNumber string `json:"bill_number"`
	Reason     string `json:"reason,omitempty"`
	Refunded   bool   `json:"refunded"`
}

// NewBillCancelledEvent creates a BillCancelledEvent
func NewBillCancelledEvent(b *Bill) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCancelled, AggregateTypeBill, b.ID),
		BillNumber:      b.BillNumber,
		Reason:          b.CancelReason,
		Refunded:        b.PaymentStatus == PaymentRefunded,
	}
}

// EstimateConvertedEvent is published when an estimate becomes a bill
type EstimateConvertedEvent struct {
	shared.BaseDomainEvent
	EstimateNumber string    `json:"estimate_number"`
	BillID         uuid.UUID `json:"bill_id"`
}

// NewEstimateConvertedEvent creates an EstimateConvertedEvent
func NewEstimateConvertedEvent(e *Estimate) *EstimateConvertedEvent {
	evt := &EstimateConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateConverted, AggregateTypeEstimate, e.ID),
		EstimateNumber:  e.EstimateNumber,
	}
	if e.BillID != nil {
		evt.BillID = *e.BillID
	}
	return evt
}
