package billing

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByNumber(ctx context.Context, number string) (*billing.Bill, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

type MockEstimateRepository struct {
	mock.Mock
}

func (m *MockEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Estimate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEstimateRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEstimateRepository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]billing.Estimate, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]billing.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) Save(ctx context.Context, estimate *billing.Estimate) error {
	args := m.Called(ctx, estimate)
	return args.Error(0)
}

// memProductRepository keeps products in a map so stock movements can be asserted
type memProductRepository struct {
	products map[uuid.UUID]*catalog.Product
	saves    int
	locked   []uuid.UUID
}

func newMemProductRepository(products ...*catalog.Product) *memProductRepository {
	r := &memProductRepository{products: make(map[uuid.UUID]*catalog.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.locked = append(r.locked, id)
	return r.FindByID(ctx, id)
}

func (r *memProductRepository) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepository) FindAll(context.Context, shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepository) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *memProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r *memProductRepository) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	r.saves++
	return nil
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipping.Shipment, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByBillID(ctx context.Context, billID uuid.UUID) ([]shipping.Shipment, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shipping.Shipment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

// fixedPricer prices with the calculator at a fixed rate per metal and purity
type fixedPricer struct {
	rates map[string]int64
	taxes pricing.TaxRates
}

func (p fixedPricer) PerPiece(_ context.Context, key pricing.RateKey, charges pricing.Charges) (pricing.Breakdown, error) {
	rate, ok := p.rates[string(key.Metal)+"/"+key.Purity]
	if !ok {
		return pricing.Unavailable(key.Market.Currency()), nil
	}
	return pricing.Calculate(pricing.NewInput(decimal.NewFromInt(rate), charges, p.taxes, key.Market.Currency())), nil
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderBill(ctx context.Context, bill *billing.Bill, store StoreInfo, format DocumentFormat) (*RenderedDocument, error) {
	args := m.Called(ctx, bill, store, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderedDocument), args.Error(1)
}

func (m *MockRenderer) RenderEstimate(ctx context.Context, estimate *billing.Estimate, store StoreInfo, format DocumentFormat) (*RenderedDocument, error) {
	args := m.Called(ctx, estimate, store, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderedDocument), args.Error(1)
}

type staticStore StoreInfo

func (s staticStore) StoreInfo(context.Context) (StoreInfo, error) { return StoreInfo(s), nil }

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, mail InvoiceMail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

type staticValidity int

func (v staticValidity) EstimateValidityDays(context.Context) (int, error) { return int(v), nil }

// recordingPublisher collects published event types
type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}
