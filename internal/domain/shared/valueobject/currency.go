package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	INR Currency = "INR" // Indian Rupee
	BHD Currency = "BHD" // Bahraini Dinar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = INR

// Places returns the number of decimal places amounts in this currency are rounded to
func (c Currency) Places() int32 {
	switch c {
	case BHD:
		return 3
	default:
		return 0
	}
}

// Round rounds an amount to the currency's places, half away from zero
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Places())
}

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	return c == INR || c == BHD
}

// Market identifies the pricing market a rate or product belongs to
type Market string

const (
	MarketIndia   Market = "IN"
	MarketBahrain Market = "BH"
)

// AllMarkets lists supported markets
var AllMarkets = []Market{MarketIndia, MarketBahrain}

// ParseMarket normalizes and validates a market code
func ParseMarket(s string) (Market, error) {
	m := Market(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unsupported market: %q", s)
	}
	return m, nil
}

// IsValid reports whether the market is supported
func (m Market) IsValid() bool {
	return m == MarketIndia || m == MarketBahrain
}

// Currency returns the settlement currency of the market
func (m Market) Currency() Currency {
	if m == MarketBahrain {
		return BHD
	}
	return INR
}

// Key returns the lowercase market code used in setting keys
func (m Market) Key() string {
	return strings.ToLower(string(m))
}
