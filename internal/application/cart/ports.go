package cart

import (
	"context"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
)

// ProductPricer prices one piece of a product at the live rate
type ProductPricer interface {
	PriceProduct(ctx context.Context, product *catalog.Product) (pricing.Breakdown, error)
}

// OrderPlacer turns a checked-out cart into an online bill and shipment
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req billingapp.PlaceOrderRequest) (*billingapp.OrderResponse, error)
}

// CheckoutRecorder counts checkout outcomes
type CheckoutRecorder interface {
	RecordCheckout(ctx context.Context, success bool)
}
