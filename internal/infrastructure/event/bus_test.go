package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	block      chan struct{}
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("bill.created")
	bus.Subscribe(handler)

	event := newTestEvent("bill.created")
	require.NoError(t, bus.Publish(context.Background(), event, newTestEvent("bill.created")))

	handled := handler.getHandled()
	require.Len(t, handled, 2)
	assert.Equal(t, event, handled[0])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bills := newTestHandler("bill.created")
	rates := newTestHandler("metal_rate.updated")
	all := newTestHandler()
	bus.Subscribe(bills)
	bus.Subscribe(rates)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("bill.created"),
		newTestEvent("metal_rate.updated"),
		newTestEvent("shipment.status_changed"),
	))

	assert.Len(t, bills.getHandled(), 1)
	assert.Len(t, rates.getHandled(), 1)
	assert.Len(t, all.getHandled(), 3)
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("bill.created")
	failing.err = errors.New("smtp down")
	panicking := newTestHandler("bill.created")
	panicking.panics = true
	healthy := newTestHandler("bill.created")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("bill.created")))

	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, panicking.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("bill.paid")
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("bill.paid"))

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("bill.paid"))

	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_AsyncStopWaits(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch())
	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("bill.created")
	handler.block = make(chan struct{})
	bus.Subscribe(handler)

	reqCtx, cancelReq := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(reqCtx, newTestEvent("bill.created")))
	cancelReq()

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(shortCtx), context.DeadlineExceeded)

	close(handler.block)
	ctx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	require.NoError(t, bus.Stop(ctx))
	assert.Len(t, handler.getHandled(), 1)
}
