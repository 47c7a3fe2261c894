package cart

import (
	"context"
	"errors"
	"fmt"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	"github.com/aurum/jewelstore/internal/domain/cart"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService runs the storefront cart and checkout
type CartService struct {
	store     cart.Store
	products  catalog.ProductRepository
	pricer    ProductPricer
	orders    OrderPlacer
	checkouts CheckoutRecorder
	logger    *zap.Logger
}

// NewCartService creates a new CartService. checkouts may be nil.
func NewCartService(store cart.Store, products catalog.ProductRepository, pricer ProductPricer, orders OrderPlacer, checkouts CheckoutRecorder, logger *zap.Logger) *CartService {
	return &CartService{
		store:     store,
		products:  products,
		pricer:    pricer,
		orders:    orders,
		checkouts: checkouts,
		logger:    logger,
	}
}

// Get returns the cart priced at live rates. An unknown cart id is an empty cart.
func (s *CartService) Get(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// AddItem merges a quantity of a product into the cart
func (s *CartService) AddItem(ctx context.Context, id uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.sellable(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.sameMarket(ctx, c, product); err != nil {
		return nil, err
	}
	if want := c.Quantity(product.ID) + req.Quantity; !product.HasStock(want) {
		return nil, stockError(product, want)
	}
	if err := c.Add(product.ID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.respond(ctx, c)
}

// UpdateItem sets a product's quantity. Zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, id, productID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity > 0 {
		product, err := s.sellable(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !product.HasStock(req.Quantity) {
			return nil, stockError(product, req.Quantity)
		}
	}
	if err := c.Set(productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.respond(ctx, c)
}

// RemoveItem drops a product from the cart
func (s *CartService) RemoveItem(ctx context.Context, id, productID uuid.UUID) (*CartResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.respond(ctx, c)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Checkout places an online order for the cart's contents and clears it
func (s *CartService) Checkout(ctx context.Context, id uuid.UUID, req CheckoutRequest) (*billingapp.OrderResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cart is empty")
	}

	lines := make([]billingapp.OrderLine, len(c.Items))
	for i, it := range c.Items {
		lines[i] = billingapp.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	order, err := s.orders.PlaceOrder(ctx, billingapp.PlaceOrderRequest{
		Customer: billingapp.CustomerRequest{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
		},
		Lines:         lines,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	s.recordCheckout(ctx, err == nil)
	if err != nil {
		s.logger.Info("checkout rejected", zap.String("cart_id", id.String()), zap.Error(err))
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to clear checked-out cart", zap.String("cart_id", id.String()), zap.Error(err))
	}
	return order, nil
}

func (s *CartService) load(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CART", "Cart id is required")
	}
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return cart.New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

func (s *CartService) sellable(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	return product, nil
}

// sameMarket keeps a cart in one currency
func (s *CartService) sameMarket(ctx context.Context, c *cart.Cart, product *catalog.Product) error {
	for _, it := range c.Items {
		if it.ProductID == product.ID {
			return nil
		}
		other, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if other.Market != product.Market {
			return shared.NewDomainError("INVALID_MARKET", "Cart already holds products sold in "+string(other.Market))
		}
		return nil
	}
	return nil
}

func (s *CartService) respond(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	resp := &CartResponse{
		ID:            c.ID,
		Items:         make([]LineResponse, 0, len(c.Items)),
		PriceComplete: true,
		UpdatedAt:     c.UpdatedAt,
	}

	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	var currency valueobject.Currency
	for _, it := range c.Items {
		resp.ItemCount += it.Quantity
		line := LineResponse{ProductID: it.ProductID, Quantity: it.Quantity}
		p, ok := byID[it.ProductID]
		if !ok || !p.IsActive {
			resp.PriceComplete = false
			resp.Items = append(resp.Items, line)
			continue
		}
		line.Code = p.Code
		line.Name = p.Name
		line.InStock = p.Stock
		line.Available = p.HasStock(it.Quantity)
		resp.Market = p.Market
		currency = p.Currency()

		perPiece, err := s.pricer.PriceProduct(ctx, p)
		if err != nil {
			s.logger.Warn("failed to price cart line", zap.String("product_id", p.ID.String()), zap.Error(err))
		}
		if err != nil || !perPiece.Available {
			resp.PriceComplete = false
			resp.Items = append(resp.Items, line)
			continue
		}
		line.UnitPrice = pricingapp.ToPriceResponse(perPiece)
		lineTotal := perPiece.Times(it.Quantity).Total
		formatted := lineTotal.StringFixed(currency.Places())
		line.LineTotal = &formatted
		total = total.Add(lineTotal)
		resp.Items = append(resp.Items, line)
	}

	resp.Currency = currency
	switch {
	case !resp.PriceComplete:
		resp.Total = ""
	case currency != "":
		resp.Total = total.StringFixed(currency.Places())
	default:
		resp.Total = "0"
	}
	return resp, nil
}

func (s *CartService) recordCheckout(ctx context.Context, success bool) {
	if s.checkouts != nil {
		s.checkouts.RecordCheckout(ctx, success)
	}
}

func stockError(p *catalog.Product, want int) error {
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Only %d of %s in stock, %d requested", p.Stock, p.Code, want))
}
