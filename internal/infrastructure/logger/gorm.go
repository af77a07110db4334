package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold applies when WithSlowThreshold is not given
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// GormLogger routes gorm output through zap. Statement entries carry the
// request, job and trace IDs found in the query context.
// gorm.ErrRecordNotFound is not logged; lookups by code expect it.
type GormLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow query threshold; zero disables it
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = threshold }
}

// NewGormLogger writes to zapLogger.Named("gorm")
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	l := &GormLogger{logger: zapLogger.Named("gorm"), level: level, slow: DefaultSlowQueryThreshold}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level >= min {
		WithLogger(ctx, l.logger).Zap().Log(lvl, fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement: failures at error level, slow
// statements at warn and everything else at debug when level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	log := WithLogger(ctx, l.logger)
	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql)}

	switch {
	case err != nil && l.level >= gormlogger.Error:
		log.Error("SQL Error", append(fields, zap.Error(err))...)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		log.Warn(fmt.Sprintf("SLOW SQL >= %v", l.slow), fields...)
	case l.level >= gormlogger.Info:
		log.Debug("SQL Query", fields...)
	}
}

// MapGormLogLevel maps an application log level name to a gorm level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
