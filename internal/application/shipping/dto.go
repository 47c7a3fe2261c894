package shipping

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/shipping"
	"github.com/google/uuid"
)

// CreateShipmentRequest creates a shipment for an online bill
type CreateShipmentRequest struct {
	BillID         uuid.UUID `json:"bill_id" binding:"required"`
	TrackingNumber string    `json:"tracking_number" binding:"max=40"`
	Carrier        string    `json:"carrier" binding:"max=100"`
	Address        string    `json:"address" binding:"max=1000"`
}

// UpdateStatusRequest advances a shipment
type UpdateStatusRequest struct {
	Status     string     `json:"status" binding:"required"`
	Location   string     `json:"location" binding:"max=200"`
	Note       string     `json:"note" binding:"max=500"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// UpdateCarrierRequest changes the carrier before dispatch
type UpdateCarrierRequest struct {
	Carrier        string `json:"carrier" binding:"required,max=100"`
	TrackingNumber string `json:"tracking_number" binding:"max=40"`
}

// EventResponse is one tracking history entry
type EventResponse struct {
	Status     shipping.Status `json:"status"`
	Location   string          `json:"location,omitempty"`
	Note       string          `json:"note,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	BillID         uuid.UUID       `json:"bill_id"`
	TrackingNumber string          `json:"tracking_number"`
	Carrier        string          `json:"carrier"`
	Address        string          `json:"address"`
	Status         shipping.Status `json:"status"`
	ShippedAt      *time.Time      `json:"shipped_at"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
	Events         []EventResponse `json:"events"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// TrackingResponse is the public view of a shipment. It leaves out the address.
type TrackingResponse struct {
	TrackingNumber string          `json:"tracking_number"`
	Carrier        string          `json:"carrier"`
	Status         shipping.Status `json:"status"`
	ShippedAt      *time.Time      `json:"shipped_at"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
	Events         []EventResponse `json:"events"`
}

func toEvents(events []shipping.ShipmentEvent) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = EventResponse{Status: e.Status, Location: e.Location, Note: e.Note, OccurredAt: e.OccurredAt}
	}
	return out
}

// ToShipmentResponse converts a domain shipment to a response
func ToShipmentResponse(s *shipping.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:             s.ID,
		BillID:         s.BillID,
		TrackingNumber: s.TrackingNumber,
		Carrier:        s.Carrier,
		Address:        s.Address,
		Status:         s.Status,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		Events:         toEvents(s.Events),
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Version:        s.Version,
	}
}

// ToTrackingResponse converts a domain shipment to its public view
func ToTrackingResponse(s *shipping.Shipment) TrackingResponse {
	return TrackingResponse{
		TrackingNumber: s.TrackingNumber,
		Carrier:        s.Carrier,
		Status:         s.Status,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		Events:         toEvents(s.Events),
	}
}
