package telemetry_test

import (
	"context"
	"testing"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/aurum/jewelstore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMetrics(t *testing.T) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(provider.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewBusinessMetrics(nil, nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_BillCreated(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	evt := &billing.BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(billing.EventTypeBillCreated, billing.AggregateTypeBill, uuid.New()),
		Channel:         billing.ChannelOnline,
		Currency:        valueobject.INR,
		GrandTotal:      decimal.NewFromInt(67980),
	}
	require.NoError(t, bm.Handle(ctx, evt))
	require.NoError(t, bm.Handle(ctx, evt))

	metrics := collect(t, reader)

	created, ok := metrics["jewel_bills_created_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(2), created.DataPoints[0].Value)
	channel, _ := created.DataPoints[0].Attributes.Value(attribute.Key("channel"))
	assert.Equal(t, string(billing.ChannelOnline), channel.AsString())

	revenue, ok := metrics["jewel_revenue_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	assert.Equal(t, 135960.0, revenue.DataPoints[0].Value)
}

func TestBusinessMetrics_Recorders(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordCheckout(ctx, true)
	bm.RecordCheckout(ctx, false)
	bm.RecordCheckout(ctx, false)
	bm.RecordRateMiss(ctx, "gold", "22K")

	metrics := collect(t, reader)

	checkouts := metrics["jewel_checkouts_total"].Data.(metricdata.Sum[int64])
	byOutcome := map[string]int64{}
	for _, dp := range checkouts.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("outcome"))
		byOutcome[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 1, "failure": 2}, byOutcome)

	misses := metrics["jewel_rate_misses_total"].Data.(metricdata.Sum[int64])
	require.Len(t, misses.DataPoints, 1)
	assert.Equal(t, int64(1), misses.DataPoints[0].Value)
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, _ := newTestMetrics(t)
	assert.ElementsMatch(t, []string{
		billing.EventTypeBillCreated,
		billing.EventTypeBillCancelled,
		billing.EventTypeEstimateConverted,
	}, bm.EventTypes())
}

func TestRegisterPoolMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	err := telemetry.RegisterPoolMetrics(provider.Meter("test"), func() (telemetry.PoolStats, error) {
		return telemetry.PoolStats{OpenConnections: 4, InUse: 1, Idle: 3, WaitCount: 7}, nil
	})
	require.NoError(t, err)

	metrics := collect(t, reader)
	open := metrics["jewel_db_connections_open"].Data.(metricdata.Gauge[int64])
	assert.Equal(t, int64(4), open.DataPoints[0].Value)
	waits := metrics["jewel_db_connections_wait_total"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(7), waits.DataPoints[0].Value)
}
