package cart

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	// MaxItems bounds distinct products in one cart
	MaxItems = 50
	// DefaultTTL is how long an idle cart is kept
	DefaultTTL = 7 * 24 * time.Hour
)

// Item is a product and quantity in a cart
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is a storefront shopping cart. It lives in a cache, not the database,
// and is identified by a client-held id.
type Cart struct {
	ID        uuid.UUID `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart
func New(id uuid.UUID) *Cart {
	return &Cart{ID: id, Items: []Item{}, UpdatedAt: time.Now()}
}

// Quantity returns the quantity of a product in the cart
func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// Add merges qty of a product into the cart
func (c *Cart) Add(productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	if len(c.Items) >= MaxItems {
		return shared.NewDomainError("CART_FULL", "Cart cannot hold more than 50 products")
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, AddedAt: time.Now()})
	c.UpdatedAt = time.Now()
	return nil
}

// Set replaces a product's quantity. Zero removes it.
func (c *Cart) Set(productID uuid.UUID, qty int) error {
	if qty < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if qty == 0 {
		return c.Remove(productID)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
}

// Remove drops a product from the cart
func (c *Cart) Remove(productID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.UpdatedAt = time.Now()
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Store persists carts
type Store interface {
	// Get returns the cart or shared.ErrNotFound
	Get(ctx context.Context, id uuid.UUID) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
