package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func onlineBill(status billing.BillStatus) *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        "BL-20261019-0001",
		Channel:           billing.ChannelOnline,
		Status:            status,
		Customer:          billing.Customer{Name: "Asha", Phone: "9999999999", Address: "12 MG Road, Pune"},
	}
}

func newService() (*ShipmentService, *MockShipmentRepository, *MockBillRepository, *recordingPublisher) {
	repo := new(MockShipmentRepository)
	bills := new(MockBillRepository)
	pub := &recordingPublisher{}
	return NewShipmentService(repo, bills, pub, zap.NewNop()), repo, bills, pub
}

func TestShipmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the customer address and generates a tracking number", func(t *testing.T) {
		svc, repo, bills, _ := newService()
		bill := onlineBill(billing.BillConfirmed)
		bills.On("FindByID", ctx, bill.ID).Return(bill, nil)
		repo.On("FindByBillID", ctx, bill.ID).Return([]shipping.Shipment{}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*shipping.Shipment")).Return(nil)

		resp, err := svc.Create(ctx, CreateShipmentRequest{BillID: bill.ID, Carrier: "BlueDart"})
		require.NoError(t, err)
		assert.Equal(t, "12 MG Road, Pune", resp.Address)
		assert.Regexp(t, `^TRK\d{10}$`, resp.TrackingNumber)
		assert.Equal(t, shipping.StatusPending, resp.Status)
		require.Len(t, resp.Events, 1)
	})

	t.Run("regenerates a colliding tracking number", func(t *testing.T) {
		svc, repo, bills, _ := newService()
		bill := onlineBill(billing.BillConfirmed)
		bills.On("FindByID", ctx, bill.ID).Return(bill, nil)
		repo.On("FindByBillID", ctx, bill.ID).Return([]shipping.Shipment{}, nil)
		repo.On("Save", ctx, mock.Anything).Return(shared.NewDomainError("ALREADY_EXISTS", "dup")).Once()
		repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, CreateShipmentRequest{BillID: bill.ID})
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("rejects store bills", func(t *testing.T) {
		svc, _, bills, _ := newService()
		bill := onlineBill(billing.BillConfirmed)
		bill.Channel = billing.ChannelStore
		bills.On("FindByID", ctx, bill.ID).Return(bill, nil)

		_, err := svc.Create(ctx, CreateShipmentRequest{BillID: bill.ID})
		de, ok := shared.GetDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_BILL", de.Code)
	})

	t.Run("rejects cancelled bills", func(t *testing.T) {
		svc, _, bills, _ := newService()
		bill := onlineBill(billing.BillCancelled)
		bills.On("FindByID", ctx, bill.ID).Return(bill, nil)

		_, err := svc.Create(ctx, CreateShipmentRequest{BillID: bill.ID})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("rejects a second open shipment", func(t *testing.T) {
		svc, repo, bills, _ := newService()
		bill := onlineBill(billing.BillConfirmed)
		open, err := shipping.NewShipment(bill.ID, "", "", "addr")
		require.NoError(t, err)
		bills.On("FindByID", ctx, bill.ID).Return(bill, nil)
		repo.On("FindByBillID", ctx, bill.ID).Return([]shipping.Shipment{*open}, nil)

		_, err = svc.Create(ctx, CreateShipmentRequest{BillID: bill.ID})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestShipmentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("appends an event and publishes the change", func(t *testing.T) {
		svc, repo, _, pub := newService()
		shipment, err := shipping.NewShipment(uuid.New(), "", "", "addr")
		require.NoError(t, err)
		repo.On("FindByID", ctx, shipment.ID).Return(shipment, nil)
		repo.On("Save", ctx, shipment).Return(nil)

		resp, err := svc.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "packed", Location: "Pune"})
		require.NoError(t, err)
		assert.Equal(t, shipping.StatusPacked, resp.Status)
		require.Len(t, resp.Events, 2)
		assert.Equal(t, "Pune", resp.Events[1].Location)
		require.Len(t, pub.events, 1)
		assert.Equal(t, shipping.EventTypeShipmentStatusChanged, pub.events[0].EventType())
	})

	t.Run("stamps shipped_at with the given time", func(t *testing.T) {
		svc, repo, _, _ := newService()
		shipment, err := shipping.NewShipment(uuid.New(), "", "", "addr")
		require.NoError(t, err)
		shipment.Status = shipping.StatusPacked
		repo.On("FindByID", ctx, shipment.ID).Return(shipment, nil)
		repo.On("Save", ctx, shipment).Return(nil)
		at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

		resp, err := svc.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "shipped", OccurredAt: &at})
		require.NoError(t, err)
		require.NotNil(t, resp.ShippedAt)
		assert.True(t, resp.ShippedAt.Equal(at))
	})

	t.Run("rejects an illegal transition", func(t *testing.T) {
		svc, repo, _, pub := newService()
		shipment, err := shipping.NewShipment(uuid.New(), "", "", "addr")
		require.NoError(t, err)
		repo.On("FindByID", ctx, shipment.ID).Return(shipment, nil)

		_, err = svc.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "delivered"})
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, pub.events)
	})
}

func TestShipmentService_Track(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newService()
	shipment, err := shipping.NewShipment(uuid.New(), "trk0000000001", "DHL", "secret address")
	require.NoError(t, err)
	repo.On("FindByTrackingNumber", ctx, "TRK0000000001").Return(shipment, nil)
	repo.On("FindByTrackingNumber", ctx, "TRK0000000002").Return(nil, shared.ErrNotFound)

	resp, err := svc.Track(ctx, "TRK0000000001")
	require.NoError(t, err)
	assert.Equal(t, "TRK0000000001", resp.TrackingNumber)
	assert.Equal(t, "DHL", resp.Carrier)

	_, err = svc.Track(ctx, "TRK0000000002")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestShipmentService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newService()
	shipment, err := shipping.NewShipment(uuid.New(), "", "", "addr")
	require.NoError(t, err)
	repo.On("FindByID", ctx, shipment.ID).Return(shipment, nil)
	repo.On("Save", ctx, shipment).Return(nil)

	require.NoError(t, svc.Delete(ctx, shipment.ID))
	assert.False(t, shipment.IsActive)

	_, err = svc.UpdateStatus(ctx, shipment.ID, UpdateStatusRequest{Status: "packed"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
