package cart

import (
	"time"

	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AddItemRequest adds a quantity of a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=1000"`
}

// UpdateItemRequest sets a product's quantity. Zero removes it.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=1000"`
}

// CheckoutRequest carries the buyer's details for an online order
type CheckoutRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Email         string `json:"email" binding:"required,email,max=200"`
	Phone         string `json:"phone" binding:"required,max=30"`
	Address       string `json:"address" binding:"required,max=2000"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card upi bank_transfer online"`
	Notes         string `json:"notes" binding:"max=2000"`
}

// LineResponse is a cart line with its live price
type LineResponse struct {
	ProductID uuid.UUID                 `json:"product_id"`
	Code      string                    `json:"code"`
	Name      string                    `json:"name"`
	Quantity  int                       `json:"quantity"`
	Available bool                      `json:"available"`
	InStock   int                       `json:"in_stock"`
	UnitPrice *pricingapp.PriceResponse `json:"unit_price"`
	// LineTotal is null when the product has no rate
	LineTotal *string `json:"line_total"`
}

// CartResponse is the cart with live prices
type CartResponse struct {
	ID       uuid.UUID            `json:"id"`
	Items    []LineResponse       `json:"items"`
	Market   valueobject.Market   `json:"market,omitempty"`
	Currency valueobject.Currency `json:"currency,omitempty"`
	Total    string               `json:"total"`
	// PriceComplete is false when some line could not be priced; Total is then empty
	PriceComplete bool      `json:"price_complete"`
	ItemCount     int       `json:"item_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}
