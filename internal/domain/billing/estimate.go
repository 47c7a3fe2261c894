package billing

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstimateStatus is the lifecycle state of an estimate
type EstimateStatus string

const (
	EstimateDraft     EstimateStatus = "draft"
	EstimateSent      EstimateStatus = "sent"
	EstimateConverted EstimateStatus = "converted"
	EstimateExpired   EstimateStatus = "expired"
)

// EstimateNumberPrefix prefixes every estimate number
const EstimateNumberPrefix = "ES"

// Estimate is a non-binding quotation priced at the rates of the day it was made
type Estimate struct {
	shared.BaseAggregateRoot
	EstimateNumber string               `gorm:"type:varchar(30);not null;uniqueIndex"`
	Customer       Customer             `gorm:"embedded;embeddedPrefix:customer_"`
	Market         valueobject.Market   `gorm:"type:varchar(4);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	Items          []EstimateItem       `gorm:"foreignKey:EstimateID"`
	Totals         Totals               `gorm:"embedded"`
	Status         EstimateStatus       `gorm:"type:varchar(20);not null;index"`
	ValidUntil     time.Time            `gorm:"not null;index"`
	BillID         *uuid.UUID           `gorm:"type:uuid"`
	Notes          string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Estimate) TableName() string {
	return "estimates"
}

// EstimateItem is a priced line on an estimate
type EstimateItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstimateID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNo     int       `gorm:"not null;default:0"`
	PricedLine
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (EstimateItem) TableName() string {
	return "estimate_items"
}

// NewEstimate creates a draft estimate
func NewEstimate(number string, customer Customer, market valueobject.Market, lines []PricedLine, validUntil time.Time) (*Estimate, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Estimate number is required")
	}
	if err := customer.validate(false); err != nil {
		return nil, err
	}
	if !market.IsValid() {
		return nil, shared.NewDomainError("INVALID_MARKET", "Market must be IN or BH")
	}
	e := &Estimate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EstimateNumber:    number,
		Customer:          customer,
		Market:            market,
		Currency:          market.Currency(),
		Status:            EstimateDraft,
	}
	if err := e.setLines(lines, decimal.Zero); err != nil {
		return nil, err
	}
	if !validUntil.After(e.CreatedAt) {
		return nil, shared.NewDomainError("INVALID_VALIDITY", "Valid-until must be in the future")
	}
	e.ValidUntil = validUntil
	return e, nil
}

func (e *Estimate) setLines(lines []PricedLine, discount decimal.Decimal) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_LINES", "An estimate needs at least one item")
	}
	totals, err := SumLines(lines, discount, e.Currency)
	if err != nil {
		return err
	}
	items := make([]EstimateItem, len(lines))
	for i, l := range lines {
		items[i] = EstimateItem{ID: uuid.New(), EstimateID: e.ID, LineNo: i + 1, PricedLine: l, CreatedAt: time.Now()}
	}
	e.Items = items
	e.Totals = totals
	return nil
}

// IsEditable reports whether the estimate can still change
func (e *Estimate) IsEditable() bool {
	return e.Status == EstimateDraft || e.Status == EstimateSent
}

// Revise replaces customer, lines, discount, notes and validity. Lines are expected re-priced.
func (e *Estimate) Revise(customer Customer, lines []PricedLine, discount decimal.Decimal, notes string, validUntil time.Time) error {
	if !e.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Only draft or sent estimates can be edited")
	}
	if err := customer.validate(false); err != nil {
		return err
	}
	if !validUntil.After(time.Now()) {
		return shared.NewDomainError("INVALID_VALIDITY", "Valid-until must be in the future")
	}
	if err := e.setLines(lines, discount); err != nil {
		return err
	}
	e.Customer = customer
	e.Notes = notes
	e.ValidUntil = validUntil
	e.Touch()
	e.IncrementVersion()
	return nil
}

// MarkSent records that the estimate was handed to the customer
func (e *Estimate) MarkSent() error {
	if e.Status != EstimateDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft estimates can be sent")
	}
	e.Status = EstimateSent
	e.Touch()
	e.IncrementVersion()
	return nil
}

// MarkConverted links the bill that was raised from this estimate
func (e *Estimate) MarkConverted(billID uuid.UUID, now time.Time) error {
	if !e.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Only draft or sent estimates can be converted")
	}
	if e.IsExpiredAt(now) {
		return shared.NewDomainError("INVALID_STATE", "Estimate has expired")
	}
	e.Status = EstimateConverted
	e.BillID = &billID
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewEstimateConvertedEvent(e))
	return nil
}

// IsExpiredAt reports whether validity has lapsed at now
func (e *Estimate) IsExpiredAt(now time.Time) bool {
	return now.After(e.ValidUntil)
}

// Expire moves a lapsed draft or sent estimate to expired.
// It reports whether the status changed.
func (e *Estimate) Expire(now time.Time) bool {
	if !e.IsEditable() || !e.IsExpiredAt(now) {
		return false
	}
	e.Status = EstimateExpired
	e.Touch()
	e.IncrementVersion()
	return true
}

// Lines returns the priced lines of the estimate
func (e *Estimate) Lines() []PricedLine {
	out := make([]PricedLine, len(e.Items))
	for i, it := range e.Items {
		out[i] = it.PricedLine
	}
	return out
}
