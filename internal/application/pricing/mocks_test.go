package pricing

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRateLookup struct {
	mock.Mock
}

func (m *MockRateLookup) RatePerGram(ctx context.Context, key pricing.RateKey) (*pricing.MetalRate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.MetalRate), args.Error(1)
}

type MockTaxSource struct {
	mock.Mock
}

func (m *MockTaxSource) TaxRates(ctx context.Context, market valueobject.Market) (pricing.TaxRates, error) {
	args := m.Called(ctx, market)
	return args.Get(0).(pricing.TaxRates), args.Error(1)
}

type MockRateInvalidator struct {
	mock.Mock
}

func (m *MockRateInvalidator) Invalidate(ctx context.Context, key pricing.RateKey) error {
	return m.Called(ctx, key).Error(0)
}

type MockMissRecorder struct {
	mock.Mock
}

func (m *MockMissRecorder) RecordRateMiss(ctx context.Context, metal, purity string) {
	m.Called(ctx, metal, purity)
}

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.MetalRate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.MetalRate), args.Error(1)
}

func (m *MockRateRepository) FindByKey(ctx context.Context, key pricing.RateKey) (*pricing.MetalRate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.MetalRate), args.Error(1)
}

func (m *MockRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.MetalRate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]pricing.MetalRate), args.Error(1)
}

func (m *MockRateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateRepository) Save(ctx context.Context, rate *pricing.MetalRate) error {
	return m.Called(ctx, rate).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
