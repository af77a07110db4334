package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	jobIDKey
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger or a no-op one
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the HTTP request ID in ctx and attaches a logger
// tagged with it
func WithRequestID(ctx context.Context, logger *zap.Logger, id string) (context.Context, *zap.Logger) {
	return tagged(ctx, logger, requestIDKey, "request_id", id)
}

// WithJobID does the same for the print job being rendered
func WithJobID(ctx context.Context, logger *zap.Logger, id string) (context.Context, *zap.Logger) {
	return tagged(ctx, logger, jobIDKey, "job_id", id)
}

func tagged(ctx context.Context, logger *zap.Logger, key ctxKey, field, id string) (context.Context, *zap.Logger) {
	l := logger.With(zap.String(field, id))
	return WithContext(context.WithValue(ctx, key, id), l), l
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func GetJobID(ctx context.Context) string {
	id, _ := ctx.Value(jobIDKey).(string)
	return id
}

// WithTraceContext adds trace_id and span_id when ctx carries a valid span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(zap.Stringer("trace_id", sc.TraceID()), zap.Stringer("span_id", sc.SpanID()))
}

// ContextLogger stamps every entry with the trace, request and job IDs found
// in its context.
//
//	logger.L(ctx).Info("export finished", zap.Int("pages", n))
type ContextLogger struct {
	ctx  context.Context
	base *zap.Logger
}

// L uses the logger attached to ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx)}
}

// WithLogger uses logger instead of the one attached to ctx. A nil logger
// discards everything.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, base: logger}
}

func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, base: cl.base.With(fields...)}
}

// Zap returns the stamped logger for APIs that want a *zap.Logger
func (cl *ContextLogger) Zap() *zap.Logger {
	l := WithTraceContext(cl.ctx, cl.base)
	if id := GetRequestID(cl.ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if id := GetJobID(cl.ctx); id != "" {
		l = l.With(zap.String("job_id", id))
	}
	return l
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.Zap().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.Zap().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.Zap().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.Zap().Error(msg, fields...) }
