package billing

import (
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity bounds a single line's quantity
const MaxLineQuantity = 1000

// PricedLine is one priced row of a bill or estimate.
// Per-piece figures come straight from the calculator; the line figures are scaled by quantity.
type PricedLine struct {
	ProductID         *uuid.UUID      `gorm:"type:uuid;index"`
	ProductCode       string          `gorm:"type:varchar(50)"`
	Description       string          `gorm:"type:varchar(200);not null"`
	Metal             pricing.Metal   `gorm:"type:varchar(20);not null"`
	Purity            string          `gorm:"type:varchar(10);not null"`
	GrossWeight       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Quantity          int             `gorm:"not null"`
	RatePerGram       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MakingPct         decimal.Decimal `gorm:"type:decimal(7,3);not null;default:0"`
	WastagePct        decimal.Decimal `gorm:"type:decimal(7,3);not null;default:0"`
	StonePct          decimal.Decimal `gorm:"type:decimal(7,3);not null;default:0"`
	HallmarkingCharge decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MetalValue        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Making            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Wastage           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Stone             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Hallmarking       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Tax               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// LineSource describes what is being priced on a line
type LineSource struct {
	ProductID   *uuid.UUID
	ProductCode string
	Description string
	Key         pricing.RateKey
	Charges     pricing.Charges
}

// NewPricedLine builds a line from a per-piece breakdown.
// An unavailable breakdown means the metal rate is missing.
func NewPricedLine(src LineSource, qty int, perPiece pricing.Breakdown) (PricedLine, error) {
	if qty <= 0 || qty > MaxLineQuantity {
		return PricedLine{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 1000")
	}
	if !perPiece.Available {
		return PricedLine{}, shared.NewDomainError("RATE_NOT_FOUND", "No metal rate for "+src.Key.String())
	}
	if src.Description == "" {
		return PricedLine{}, shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
	}
	b := perPiece.Times(qty)
	return PricedLine{
		ProductID:         src.ProductID,
		ProductCode:       src.ProductCode,
		Description:       src.Description,
		Metal:             src.Key.Metal,
		Purity:            src.Key.Purity,
		GrossWeight:       src.Charges.GrossWeight,
		Quantity:          qty,
		RatePerGram:       perPiece.RatePerGram,
		MakingPct:         src.Charges.MakingPct,
		WastagePct:        src.Charges.WastagePct,
		StonePct:          src.Charges.StonePct,
		HallmarkingCharge: src.Charges.HallmarkingFlat,
		MetalValue:        b.MetalValue,
		Making:            b.Making,
		Wastage:           b.Wastage,
		Stone:             b.Stone,
		Hallmarking:       b.Hallmarking,
		Subtotal:          b.Subtotal,
		Tax:               b.Tax,
		LineTotal:         b.Total,
	}, nil
}

// Totals are the summed figures of a document
type Totals struct {
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// SumLines totals the lines and applies a discount.
// GrandTotal is the sum of line totals, each of which is already a rounded exact sum.
func SumLines(lines []PricedLine, discount decimal.Decimal, currency valueobject.Currency) (Totals, error) {
	t := Totals{Subtotal: decimal.Zero, TaxTotal: decimal.Zero, Discount: currency.Round(discount)}
	gross := decimal.Zero
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.TaxTotal = t.TaxTotal.Add(l.Tax)
		gross = gross.Add(l.LineTotal)
	}
	if t.Discount.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if t.Discount.GreaterThan(gross) {
		return Totals{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the document total")
	}
	t.GrandTotal = gross.Sub(t.Discount)
	return t, nil
}

// Customer is the buyer on a document
type Customer struct {
	Name    string `gorm:"type:varchar(200);not null"`
	Phone   string `gorm:"type:varchar(30);index"`
	Email   string `gorm:"type:varchar(200)"`
	Address string `gorm:"type:text"`
}

func (c Customer) validate(requireContact bool) error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name is required")
	}
	if requireContact && (c.Phone == "" || c.Address == "") {
		return shared.NewDomainError("INVALID_CUSTOMER", "Phone and shipping address are required for online orders")
	}
	return nil
}
