package event

import (
	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shipping"
)

// RegisterAllEvents registers every domain event published by the application
func RegisterAllEvents(s *EventSerializer) {
	s.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	s.Register(catalog.EventTypeProductStockChanged, &catalog.ProductStockChangedEvent{})

	s.Register(pricing.EventTypeMetalRateUpdated, &pricing.MetalRateUpdatedEvent{})

	s.Register(billing.EventTypeBillCreated, &billing.BillCreatedEvent{})
	s.Register(billing.EventTypeBillPaid, &billing.BillPaidEvent{})
	s.Register(billing.EventTypeBillCancelled, &billing.BillCancelledEvent{})
	s.Register(billing.EventTypeEstimateConverted, &billing.EstimateConvertedEvent{})

	s.Register(shipping.EventTypeShipmentStatusChanged, &shipping.StatusChangedEvent{})
}

// AllEventTypes lists the event types registered by RegisterAllEvents
func AllEventTypes() []string {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s.RegisteredTypes()
}
