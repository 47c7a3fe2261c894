package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the threshold above which statements are logged as slow
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger sends GORM output to zap. Statements carry the request and
// user IDs and the active trace. Bind values are left as placeholders
// unless WithSQLValues is set, so customer phone numbers, addresses and
// password hashes do not reach the logs.
type GormLogger struct {
	logger     *zap.Logger
	level      gormlogger.LogLevel
	slowQuery  time.Duration
	showValues bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowQuery sets the slow statement threshold; zero disables slow logging
func WithSlowQuery(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowQuery = d }
}

// WithSQLValues interpolates bind values into logged statements
func WithSQLValues(show bool) GormLoggerOption {
	return func(l *GormLogger) { l.showValues = show }
}

// NewGormLogger creates a GORM logger under the "gorm" name
func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		logger:    zl.Named("gorm"),
		level:     level,
		slowQuery: DefaultSlowQuery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy at the given level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		WithTraceContext(ctx, l.logger).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		WithTraceContext(ctx, l.logger).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		WithTraceContext(ctx, l.logger).Sugar().Errorf(msg, data...)
	}
}

// ParamsFilter drops bind values before GORM renders the statement
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.showValues {
		return sql, params
	}
	return sql, nil
}

// Trace logs failed statements at error, slow ones at warn and the rest at
// debug. A missing row is an expected outcome and is not logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slowQuery > 0 && elapsed > l.slowQuery

	switch {
	case failed && l.level >= gormlogger.Error:
		l.statement(ctx, fc, elapsed).Error("sql failed", zap.Error(err))
	case slow && l.level >= gormlogger.Warn:
		l.statement(ctx, fc, elapsed).Warn("slow sql", zap.Duration("threshold", l.slowQuery))
	case l.level >= gormlogger.Info:
		l.statement(ctx, fc, elapsed).Debug("sql")
	}
}

func (l *GormLogger) statement(ctx context.Context, fc func() (string, int64), elapsed time.Duration) *zap.Logger {
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetUserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	return WithTraceContext(ctx, l.logger).With(fields...)
}

// MapGormLogLevel maps the application log level. Debug shows every
// statement; the default keeps only slow and failed ones.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug", "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
