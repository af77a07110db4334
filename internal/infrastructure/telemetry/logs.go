package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig selects the collector zap records are shipped to
type LogsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	Insecure          bool
}

// LoggerProvider batches log records to the collector
type LoggerProvider struct {
	sdk *sdklog.LoggerProvider
}

func NewLoggerProvider(ctx context.Context, cfg LogsConfig, res *resource.Resource, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{}
	if !cfg.Enabled {
		return lp, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create logs exporter: %w", err)
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.sdk)
	logger.Info("log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

func (lp *LoggerProvider) IsEnabled() bool {
	return lp.sdk != nil
}

func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := lp.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown logger provider: %w", err)
	}
	return nil
}

// Bridge tees logger into the collector for entries at level or above.
// Without export, logger is returned as is.
func (lp *LoggerProvider) Bridge(logger *zap.Logger, name string, level zapcore.Level) *zap.Logger {
	if lp == nil || lp.sdk == nil {
		return logger
	}
	exported := &minLevelCore{Core: otelzap.NewCore(name, otelzap.WithLoggerProvider(lp.sdk)), min: level}
	return logger.WithOptions(zap.WrapCore(func(local zapcore.Core) zapcore.Core {
		return zapcore.NewTee(local, exported)
	}))
}

// minLevelCore puts a floor under otelzap's core, which accepts every level
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.Level < c.min {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
