package telemetry

import (
	"context"
	"errors"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics component is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BusinessMetrics counts storefront activity. It subscribes to billing events
// and exposes recorders for the checkout and pricing paths.
type BusinessMetrics struct {
	logger *zap.Logger

	billsCreated       metric.Int64Counter
	billsCancelled     metric.Int64Counter
	revenue            metric.Float64Counter
	checkouts          metric.Int64Counter
	rateMisses         metric.Int64Counter
	estimatesConverted metric.Int64Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error
	if bm.billsCreated, err = meter.Int64Counter("jewel_bills_created_total",
		metric.WithDescription("Bills raised"), metric.WithUnit("{bills}")); err != nil {
		return nil, err
	}
	if bm.billsCancelled, err = meter.Int64Counter("jewel_bills_cancelled_total",
		metric.WithDescription("Bills cancelled"), metric.WithUnit("{bills}")); err != nil {
		return nil, err
	}
	if bm.revenue, err = meter.Float64Counter("jewel_revenue_total",
		metric.WithDescription("Grand total of raised bills in their currency")); err != nil {
		return nil, err
	}
	if bm.checkouts, err = meter.Int64Counter("jewel_checkouts_total",
		metric.WithDescription("Cart checkout attempts by outcome"), metric.WithUnit("{checkouts}")); err != nil {
		return nil, err
	}
	if bm.rateMisses, err = meter.Int64Counter("jewel_rate_misses_total",
		metric.WithDescription("Price lookups without a metal rate"), metric.WithUnit("{lookups}")); err != nil {
		return nil, err
	}
	if bm.estimatesConverted, err = meter.Int64Counter("jewel_estimates_converted_total",
		metric.WithDescription("Estimates converted into bills"), metric.WithUnit("{estimates}")); err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler
func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		billing.EventTypeBillCreated,
		billing.EventTypeBillCancelled,
		billing.EventTypeEstimateConverted,
	}
}

// Handle implements shared.EventHandler
func (m *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.BillCreatedEvent:
		attrs := metric.WithAttributes(
			attribute.String("channel", string(e.Channel)),
			attribute.String("currency", string(e.Currency)),
		)
		m.billsCreated.Add(ctx, 1, attrs)
		m.revenue.Add(ctx, e.GrandTotal.InexactFloat64(),
			metric.WithAttributes(attribute.String("currency", string(e.Currency))))
	case *billing.BillCancelledEvent:
		m.billsCancelled.Add(ctx, 1, metric.WithAttributes(attribute.Bool("refunded", e.Refunded)))
	case *billing.EstimateConvertedEvent:
		m.estimatesConverted.Add(ctx, 1)
	default:
		m.logger.Debug("Ignoring event in business metrics", zap.String("event_type", event.EventType()))
	}
	return nil
}

// RecordCheckout counts a checkout attempt
func (m *BusinessMetrics) RecordCheckout(ctx context.Context, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRateMiss counts a price lookup that found no rate for metal and purity
func (m *BusinessMetrics) RecordRateMiss(ctx context.Context, metal, purity string) {
	m.rateMisses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("metal", metal),
		attribute.String("purity", purity),
	))
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
