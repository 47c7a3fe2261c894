package pricing

import (
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input carries everything the price formula needs for one piece
type Input struct {
	GrossWeight     decimal.Decimal // grams
	RatePerGram     decimal.Decimal
	MakingPct       decimal.Decimal
	WastagePct      decimal.Decimal
	StonePct        decimal.Decimal
	HallmarkingFlat decimal.Decimal
	GSTPct          decimal.Decimal
	VATPct          decimal.Decimal
	Currency        valueobject.Currency
}

// Breakdown is the priced result for one piece.
// When Available is false no rate was found and every amount is zero;
// callers render that as a blank price.
type Breakdown struct {
	Available   bool
	Currency    valueobject.Currency
	RatePerGram decimal.Decimal
	MetalValue  decimal.Decimal
	Making      decimal.Decimal
	Wastage     decimal.Decimal
	Stone       decimal.Decimal
	Hallmarking decimal.Decimal
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Unavailable returns the blank breakdown used when no rate exists
func Unavailable(currency valueobject.Currency) Breakdown {
	return Breakdown{Currency: currency}
}

// Calculate prices a piece from its weight and the metal rate.
//
// All arithmetic is done at full precision. Each reported figure is the
// exact value rounded to the currency's places, so Total is the rounded
// closed-form sum rather than the sum of rounded parts.
func Calculate(in Input) Breakdown {
	metalValue := in.GrossWeight.Mul(in.RatePerGram)
	making := metalValue.Mul(in.MakingPct).Div(hundred)
	wastage := metalValue.Mul(in.WastagePct).Div(hundred)
	stone := metalValue.Mul(in.StonePct).Div(hundred)
	subtotal := metalValue.Add(making).Add(wastage).Add(stone).Add(in.HallmarkingFlat)
	tax := subtotal.Mul(in.GSTPct.Add(in.VATPct)).Div(hundred)
	total := subtotal.Add(tax)

	c := in.Currency
	return Breakdown{
		Available:   true,
		Currency:    c,
		RatePerGram: in.RatePerGram,
		MetalValue:  c.Round(metalValue),
		Making:      c.Round(making),
		Wastage:     c.Round(wastage),
		Stone:       c.Round(stone),
		Hallmarking: c.Round(in.HallmarkingFlat),
		Subtotal:    c.Round(subtotal),
		Tax:         c.Round(tax),
		Total:       c.Round(total),
	}
}

// Times scales a per-piece breakdown to a quantity. Figures are re-rounded
// from the per-piece values, which are already in currency precision.
func (b Breakdown) Times(qty int) Breakdown {
	if !b.Available || qty == 1 {
		return b
	}
	q := decimal.NewFromInt(int64(qty))
	return Breakdown{
		Available:   true,
		Currency:    b.Currency,
		RatePerGram: b.RatePerGram,
		MetalValue:  b.MetalValue.Mul(q),
		Making:      b.Making.Mul(q),
		Wastage:     b.Wastage.Mul(q),
		Stone:       b.Stone.Mul(q),
		Hallmarking: b.Hallmarking.Mul(q),
		Subtotal:    b.Subtotal.Mul(q),
		Tax:         b.Tax.Mul(q),
		Total:       b.Total.Mul(q),
	}
}

// TaxRates are the percentage tax rates applied in a market
type TaxRates struct {
	GSTPct decimal.Decimal
	VATPct decimal.Decimal
}

// Charges are the per-piece fabrication inputs a product carries
type Charges struct {
	GrossWeight     decimal.Decimal
	MakingPct       decimal.Decimal
	WastagePct      decimal.Decimal
	StonePct        decimal.Decimal
	HallmarkingFlat decimal.Decimal
}

// Validate checks the charges can be priced: a positive weight, percentages
// within 0 to 100 and a hallmarking charge that is not negative.
func (c Charges) Validate() error {
	if !c.GrossWeight.IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Gross weight must be greater than zero")
	}
	for _, pct := range []decimal.Decimal{c.MakingPct, c.WastagePct, c.StonePct} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return shared.NewDomainError("INVALID_PERCENTAGE", "Percentages must be between 0 and 100")
		}
	}
	if c.HallmarkingFlat.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGE", "Hallmarking charge cannot be negative")
	}
	return nil
}

// NewInput assembles calculator input from a rate, product charges and market taxes
func NewInput(rate decimal.Decimal, charges Charges, taxes TaxRates, currency valueobject.Currency) Input {
	return Input{
		GrossWeight:     charges.GrossWeight,
		RatePerGram:     rate,
		MakingPct:       charges.MakingPct,
		WastagePct:      charges.WastagePct,
		StonePct:        charges.StonePct,
		HallmarkingFlat: charges.HallmarkingFlat,
		GSTPct:          taxes.GSTPct,
		VATPct:          taxes.VATPct,
		Currency:        currency,
	}
}
