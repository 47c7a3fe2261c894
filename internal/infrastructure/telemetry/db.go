package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBTracingConfig configures GORM instrumentation
type DBTracingConfig struct {
	DBName             string
	SlowQueryThreshold time.Duration
}

// GormPlugins returns the otelgorm tracing plugin plus slow query marking.
// Query parameters are never recorded on spans.
func GormPlugins(cfg DBTracingConfig, logger *zap.Logger) []gorm.Plugin {
	return []gorm.Plugin{
		otelgorm.NewPlugin(
			otelgorm.WithDBName(cfg.DBName),
			otelgorm.WithoutQueryVariables(),
			otelgorm.WithoutMetrics(),
		),
		&slowQueryPlugin{threshold: cfg.SlowQueryThreshold, logger: logger},
	}
}

// slowQueryPlugin annotates the active span when a statement exceeds threshold
type slowQueryPlugin struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (p *slowQueryPlugin) Name() string { return "telemetry:slow_query" }

func (p *slowQueryPlugin) Initialize(db *gorm.DB) error {
	if p.threshold <= 0 {
		return nil
	}
	cb := db.Callback()
	register := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"create", wrap(cb.Create().Before("gorm:create"), p.start), wrap(cb.Create().After("gorm:create"), p.finish)},
		{"query", wrap(cb.Query().Before("gorm:query"), p.start), wrap(cb.Query().After("gorm:query"), p.finish)},
		{"update", wrap(cb.Update().Before("gorm:update"), p.start), wrap(cb.Update().After("gorm:update"), p.finish)},
		{"delete", wrap(cb.Delete().Before("gorm:delete"), p.start), wrap(cb.Delete().After("gorm:delete"), p.finish)},
		{"raw", wrap(cb.Raw().Before("gorm:raw"), p.start), wrap(cb.Raw().After("gorm:raw"), p.finish)},
	}
	for _, r := range register {
		if err := r.before("telemetry:before_" + r.name); err != nil {
			return fmt.Errorf("register slow query callback: %w", err)
		}
		if err := r.after("telemetry:after_" + r.name); err != nil {
			return fmt.Errorf("register slow query callback: %w", err)
		}
	}
	return nil
}

func wrap(p interface {
	Register(string, func(*gorm.DB)) error
}, fn func(*gorm.DB)) func(string) error {
	return func(name string) error { return p.Register(name, fn) }
}

func (p *slowQueryPlugin) start(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (p *slowQueryPlugin) finish(db *gorm.DB) {
	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	started, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(started)
	if elapsed < p.threshold {
		return
	}

	ctx := db.Statement.Context
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.String("db.sql.table", db.Statement.Table),
			attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
		))
	}
	p.logger.Debug("slow query marked on span",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
	)
}

// PoolStats is the subset of connection pool statistics exported as gauges
type PoolStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	WaitCount       int64
}

// PoolStatsFunc reads current pool statistics
type PoolStatsFunc func() (PoolStats, error)

// RegisterPoolMetrics exports pool statistics as observable gauges
func RegisterPoolMetrics(meter metric.Meter, stats PoolStatsFunc) error {
	if meter == nil {
		return ErrMeterNil
	}
	open, err := meter.Int64ObservableGauge("jewel_db_connections_open", metric.WithDescription("Open connections"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("jewel_db_connections_in_use", metric.WithDescription("Connections in use"))
	if err != nil {
		return err
	}
	idle, err := meter.Int64ObservableGauge("jewel_db_connections_idle", metric.WithDescription("Idle connections"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("jewel_db_connections_wait_total", metric.WithDescription("Connection waits"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s, err := stats()
		if err != nil {
			return err
		}
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(inUse, int64(s.InUse))
		o.ObserveInt64(idle, int64(s.Idle))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, open, inUse, idle, waits)
	return err
}
