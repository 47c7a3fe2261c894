package cart

import (
	"context"
	"errors"
	"testing"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/cart"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	carts map[uuid.UUID]*cart.Cart
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (*cart.Cart, error) {
	c, ok := s.carts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (s *memStore) Put(_ context.Context, c *cart.Cart) error {
	s.carts[c.ID] = c
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.carts, id)
	return nil
}

type memProducts struct {
	catalog.ProductRepository
	items map[uuid.UUID]*catalog.Product
}

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type ratePricer struct{}

func (ratePricer) PriceProduct(_ context.Context, p *catalog.Product) (pricing.Breakdown, error) {
	if p.Metal != pricing.MetalGold {
		return pricing.Unavailable(p.Currency()), nil
	}
	return pricing.Calculate(pricing.NewInput(decimal.NewFromInt(6000), p.Charges(),
		pricing.TaxRates{GSTPct: decimal.NewFromInt(3)}, p.Currency())), nil
}

type MockOrderPlacer struct {
	mock.Mock
}

func (m *MockOrderPlacer) PlaceOrder(ctx context.Context, req billingapp.PlaceOrderRequest) (*billingapp.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.OrderResponse), args.Error(1)
}

type MockCheckoutRecorder struct {
	mock.Mock
}

func (m *MockCheckoutRecorder) RecordCheckout(ctx context.Context, success bool) {
	m.Called(ctx, success)
}

type cartFixture struct {
	store    *memStore
	products *memProducts
	orders   *MockOrderPlacer
	metrics  *MockCheckoutRecorder
	service  *CartService
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		store:    &memStore{carts: make(map[uuid.UUID]*cart.Cart)},
		products: &memProducts{items: make(map[uuid.UUID]*catalog.Product)},
		orders:   new(MockOrderPlacer),
		metrics:  new(MockCheckoutRecorder),
	}
	f.service = NewCartService(f.store, f.products, ratePricer{}, f.orders, f.metrics, zap.NewNop())
	return f
}

func (f *cartFixture) addProduct(t *testing.T, code, metal, purity, market string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Piece "+code, catalog.Spec{
		Metal:       metal,
		Purity:      purity,
		Market:      market,
		GrossWeight: decimal.NewFromInt(10),
		MakingPct:   decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock, "setup"))
	f.products.items[p.ID] = p
	return p
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("merges quantities and prices lines", func(t *testing.T) {
		f := newCartFixture()
		ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 5)
		cartID := uuid.New()

		_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 1})
		require.NoError(t, err)
		resp, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 2})
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		assert.Equal(t, 3, resp.Items[0].Quantity)
		assert.Equal(t, 3, resp.ItemCount)
		require.NotNil(t, resp.Items[0].LineTotal)
		assert.Equal(t, "207648", *resp.Items[0].LineTotal)
		assert.Equal(t, "207648", resp.Total)
		assert.Equal(t, valueobject.INR, resp.Currency)
		assert.True(t, resp.PriceComplete)
	})

	t.Run("rejects more than in stock", func(t *testing.T) {
		f := newCartFixture()
		ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 2)
		cartID := uuid.New()

		_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("keeps one market per cart", func(t *testing.T) {
		f := newCartFixture()
		ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 2)
		bangle := f.addProduct(t, "BANGLE-1", "gold", "21K", "BH", 2)
		cartID := uuid.New()

		_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 1})
		require.NoError(t, err)
		_, err = f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: bangle.ID, Quantity: 1})
		de, ok := shared.GetDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_MARKET", de.Code)
	})
}

func TestCartService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown cart is empty", func(t *testing.T) {
		f := newCartFixture()
		resp, err := f.service.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Equal(t, "0", resp.Total)
	})

	t.Run("missing rate leaves a blank line price", func(t *testing.T) {
		f := newCartFixture()
		ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 5)
		anklet := f.addProduct(t, "ANKLET-1", "silver", "925", "IN", 5)
		cartID := uuid.New()
		_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 1})
		require.NoError(t, err)
		_, err = f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: anklet.ID, Quantity: 1})
		require.NoError(t, err)

		resp, err := f.service.Get(ctx, cartID)
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)
		assert.Nil(t, resp.Items[1].UnitPrice)
		assert.Nil(t, resp.Items[1].LineTotal)
		require.NotNil(t, resp.Items[0].LineTotal)
		assert.Equal(t, "69216", *resp.Items[0].LineTotal)
		assert.False(t, resp.PriceComplete)
		assert.Empty(t, resp.Total)
	})
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 5)
	cartID := uuid.New()
	_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 1})
	require.NoError(t, err)

	resp, err := f.service.UpdateItem(ctx, cartID, ring.ID, UpdateItemRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Items[0].Quantity)

	_, err = f.service.UpdateItem(ctx, cartID, ring.ID, UpdateItemRequest{Quantity: 6})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	resp, err = f.service.RemoveItem(ctx, cartID, ring.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	_, err = f.service.RemoveItem(ctx, cartID, ring.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCartService_Checkout(t *testing.T) {
	ctx := context.Background()
	req := CheckoutRequest{Name: "Asha", Email: "asha@example.com", Phone: "+91 98450 00000", Address: "12 MG Road"}

	t.Run("empty cart", func(t *testing.T) {
		f := newCartFixture()
		_, err := f.service.Checkout(ctx, uuid.New(), req)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("places order and clears cart", func(t *testing.T) {
		f := newCartFixture()
		ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 5)
		cartID := uuid.New()
		_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 2})
		require.NoError(t, err)

		order := &billingapp.OrderResponse{TrackingNumber: "TRK0123456789"}
		f.orders.On("PlaceOrder", ctx, mock.MatchedBy(func(r billingapp.PlaceOrderRequest) bool {
			return len(r.Lines) == 1 && r.Lines[0].ProductID == ring.ID && r.Lines[0].Quantity == 2 &&
				r.Customer.Email == "asha@example.com"
		})).Return(order, nil)
		f.metrics.On("RecordCheckout", ctx, true).Return()

		resp, err := f.service.Checkout(ctx, cartID, req)
		require.NoError(t, err)
		assert.Equal(t, "TRK0123456789", resp.TrackingNumber)
		assert.NotContains(t, f.store.carts, cartID)
		f.metrics.AssertExpectations(t)
	})

	t.Run("failed order keeps the cart", func(t *testing.T) {
		f := newCartFixture()
		ring := f.addProduct(t, "RING-1", "gold", "22K", "IN", 5)
		cartID := uuid.New()
		_, err := f.service.AddItem(ctx, cartID, AddItemRequest{ProductID: ring.ID, Quantity: 1})
		require.NoError(t, err)

		f.orders.On("PlaceOrder", ctx, mock.Anything).Return(nil, errors.New("db down"))
		f.metrics.On("RecordCheckout", ctx, false).Return()

		_, err = f.service.Checkout(ctx, cartID, req)
		require.Error(t, err)
		assert.Contains(t, f.store.carts, cartID)
		f.metrics.AssertExpectations(t)
	})
}
