package billing

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRequest carries the buyer's details
type CustomerRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Phone   string `json:"phone" binding:"max=30"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Address string `json:"address" binding:"max=2000"`
}

func (c CustomerRequest) toDomain() billing.Customer {
	return billing.Customer{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

// LineRequest is one requested line. With a product_id the product's own
// attributes are priced; without one the custom attributes are required.
type LineRequest struct {
	ProductID         *uuid.UUID      `json:"product_id"`
	Quantity          int             `json:"quantity" binding:"required,min=1,max=1000"`
	Description       string          `json:"description" binding:"max=200"`
	Metal             string          `json:"metal" binding:"omitempty,oneof=gold silver platinum"`
	Purity            string          `json:"purity" binding:"max=10"`
	GrossWeight       decimal.Decimal `json:"gross_weight"`
	MakingPct         decimal.Decimal `json:"making_pct"`
	WastagePct        decimal.Decimal `json:"wastage_pct"`
	StonePct          decimal.Decimal `json:"stone_pct"`
	HallmarkingCharge decimal.Decimal `json:"hallmarking_charge"`
}

// CreateBillRequest creates a counter bill
type CreateBillRequest struct {
	Channel       string          `json:"channel" binding:"omitempty,oneof=store online"`
	Customer      CustomerRequest `json:"customer" binding:"required"`
	Market        string          `json:"market" binding:"omitempty,oneof=IN BH in bh"`
	Items         []LineRequest   `json:"items" binding:"required,min=1,max=100,dive"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash card upi bank_transfer online"`
	Discount      decimal.Decimal `json:"discount"`
	Notes         string          `json:"notes" binding:"max=2000"`
	Paid          bool            `json:"paid"`
}

// UpdateBillRequest edits the customer, notes and discount of a bill
type UpdateBillRequest struct {
	Customer CustomerRequest `json:"customer" binding:"required"`
	Notes    string          `json:"notes" binding:"max=2000"`
	Discount decimal.Decimal `json:"discount"`
}

// MarkPaidRequest records payment, optionally changing the method
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card upi bank_transfer online"`
}

// CancelBillRequest voids a bill
type CancelBillRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// EmailInvoiceRequest mails the invoice. An empty To uses the customer's email.
type EmailInvoiceRequest struct {
	To string `json:"to" binding:"omitempty,email"`
}

// OrderLine is a product and quantity in a storefront order
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderRequest creates an online bill and its pending shipment
type PlaceOrderRequest struct {
	Customer      CustomerRequest
	Lines         []OrderLine
	PaymentMethod string
	Notes         string
}

// OrderResponse is a placed storefront order
type OrderResponse struct {
	Bill           BillResponse `json:"bill"`
	ShipmentID     uuid.UUID    `json:"shipment_id"`
	TrackingNumber string       `json:"tracking_number"`
}

// CreateEstimateRequest creates an estimate. A nil ValidUntil uses the configured validity.
type CreateEstimateRequest struct {
	Customer   CustomerRequest `json:"customer" binding:"required"`
	Market     string          `json:"market" binding:"omitempty,oneof=IN BH in bh"`
	Items      []LineRequest   `json:"items" binding:"required,min=1,max=100,dive"`
	Discount   decimal.Decimal `json:"discount"`
	Notes      string          `json:"notes" binding:"max=2000"`
	ValidUntil *time.Time      `json:"valid_until"`
}

// UpdateEstimateRequest revises an estimate. Items are re-priced at current rates.
type UpdateEstimateRequest = CreateEstimateRequest

// ConvertEstimateRequest raises a bill from an estimate
type ConvertEstimateRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card upi bank_transfer online"`
	Paid          bool   `json:"paid"`
}

// CustomerResponse is the buyer block in responses
type CustomerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// LineResponse is a priced line in responses
type LineResponse struct {
	LineNo            int             `json:"line_no"`
	ProductID         *uuid.UUID      `json:"product_id"`
	ProductCode       string          `json:"product_code"`
	Description       string          `json:"description"`
	Metal             pricing.Metal   `json:"metal"`
	Purity            string          `json:"purity"`
	GrossWeight       decimal.Decimal `json:"gross_weight"`
	Quantity          int             `json:"quantity"`
	RatePerGram       decimal.Decimal `json:"rate_per_gram"`
	MakingPct         decimal.Decimal `json:"making_pct"`
	WastagePct        decimal.Decimal `json:"wastage_pct"`
	StonePct          decimal.Decimal `json:"stone_pct"`
	HallmarkingCharge decimal.Decimal `json:"hallmarking_charge"`
	MetalValue        decimal.Decimal `json:"metal_value"`
	Making            decimal.Decimal `json:"making_charges"`
	Wastage           decimal.Decimal `json:"wastage_charges"`
	Stone             decimal.Decimal `json:"stone_charges"`
	Hallmarking       decimal.Decimal `json:"hallmarking"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

// TotalsResponse is the totals block in responses
type TotalsResponse struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID            uuid.UUID             `json:"id"`
	BillNumber    string                `json:"bill_number"`
	Channel       billing.Channel       `json:"channel"`
	Customer      CustomerResponse      `json:"customer"`
	Market        valueobject.Market    `json:"market"`
	Currency      valueobject.Currency  `json:"currency"`
	Items         []LineResponse        `json:"items"`
	Totals        TotalsResponse        `json:"totals"`
	PaymentMethod billing.PaymentMethod `json:"payment_method"`
	PaymentStatus billing.PaymentStatus `json:"payment_status"`
	Status        billing.BillStatus    `json:"status"`
	EstimateID    *uuid.UUID            `json:"estimate_id"`
	Notes         string                `json:"notes"`
	PaidAt        *time.Time            `json:"paid_at"`
	CancelledAt   *time.Time            `json:"cancelled_at"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	IsActive      bool                  `json:"is_active"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Version       int                   `json:"version"`
}

// EstimateResponse represents an estimate in API responses
type EstimateResponse struct {
	ID             uuid.UUID              `json:"id"`
	EstimateNumber string                 `json:"estimate_number"`
	Customer       CustomerResponse       `json:"customer"`
	Market         valueobject.Market     `json:"market"`
	Currency       valueobject.Currency   `json:"currency"`
	Items          []LineResponse         `json:"items"`
	Totals         TotalsResponse         `json:"totals"`
	Status         billing.EstimateStatus `json:"status"`
	ValidUntil     time.Time              `json:"valid_until"`
	BillID         *uuid.UUID             `json:"bill_id"`
	Notes          string                 `json:"notes"`
	IsActive       bool                   `json:"is_active"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Version        int                    `json:"version"`
}

// ToBillResponse converts a domain bill to a response
func ToBillResponse(b *billing.Bill) BillResponse {
	items := make([]LineResponse, len(b.Items))
	for i, it := range b.Items {
		items[i] = toLineResponse(it.LineNo, it.PricedLine)
	}
	return BillResponse{
		ID:            b.ID,
		BillNumber:    b.BillNumber,
		Channel:       b.Channel,
		Customer:      toCustomerResponse(b.Customer),
		Market:        b.Market,
		Currency:      b.Currency,
		Items:         items,
		Totals:        toTotalsResponse(b.Totals),
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
		Status:        b.Status,
		EstimateID:    b.EstimateID,
		Notes:         b.Notes,
		PaidAt:        b.PaidAt,
		CancelledAt:   b.CancelledAt,
		CancelReason:  b.CancelReason,
		IsActive:      b.IsActive,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}

// ToEstimateResponse converts a domain estimate to a response
func ToEstimateResponse(e *billing.Estimate) EstimateResponse {
	items := make([]LineResponse, len(e.Items))
	for i, it := range e.Items {
		items[i] = toLineResponse(it.LineNo, it.PricedLine)
	}
	return EstimateResponse{
		ID:             e.ID,
		EstimateNumber: e.EstimateNumber,
		Customer:       toCustomerResponse(e.Customer),
		Market:         e.Market,
		Currency:       e.Currency,
		Items:          items,
		Totals:         toTotalsResponse(e.Totals),
		Status:         e.Status,
		ValidUntil:     e.ValidUntil,
		BillID:         e.BillID,
		Notes:          e.Notes,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		Version:        e.Version,
	}
}

func toCustomerResponse(c billing.Customer) CustomerResponse {
	return CustomerResponse{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

func toTotalsResponse(t billing.Totals) TotalsResponse {
	return TotalsResponse{Subtotal: t.Subtotal, TaxTotal: t.TaxTotal, Discount: t.Discount, GrandTotal: t.GrandTotal}
}

func toLineResponse(lineNo int, l billing.PricedLine) LineResponse {
	return LineResponse{
		LineNo:            lineNo,
		ProductID:         l.ProductID,
		ProductCode:       l.ProductCode,
		Description:       l.Description,
		Metal:             l.Metal,
		Purity:            l.Purity,
		GrossWeight:       l.GrossWeight,
		Quantity:          l.Quantity,
		RatePerGram:       l.RatePerGram,
		MakingPct:         l.MakingPct,
		WastagePct:        l.WastagePct,
		StonePct:          l.StonePct,
		HallmarkingCharge: l.HallmarkingCharge,
		MetalValue:        l.MetalValue,
		Making:            l.Making,
		Wastage:           l.Wastage,
		Stone:             l.Stone,
		Hallmarking:       l.Hallmarking,
		Subtotal:          l.Subtotal,
		Tax:               l.Tax,
		LineTotal:         l.LineTotal,
	}
}
