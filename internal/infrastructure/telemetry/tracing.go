package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/barcodeprint/backend"

// WithAttribute sets one attribute when the span starts
func WithAttribute(key string, value any) trace.SpanStartEventOption {
	return trace.WithAttributes(toAttribute(key, value))
}

func WithSpanKind(kind trace.SpanKind) trace.SpanStartOption {
	return trace.WithSpanKind(kind)
}

// StartSpan starts a span on the global provider; the caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "print_job.render")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// StartServiceSpan names the span service.method, e.g. barcode.generate
func StartServiceSpan(ctx context.Context, service, method string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttributes takes alternating keys and values. A pair whose key is not a
// string is skipped.
func SetAttributes(span trace.Span, kv ...any) {
	if span != nil {
		span.SetAttributes(pairs(kv)...)
	}
}

// RecordError marks span failed with err; a nil err changes nothing
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// AddEvent adds a named event with alternating key/value attributes
func AddEvent(span trace.Span, name string, kv ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(pairs(kv)...))
	}
}

// GetTraceID is the hex trace id in ctx, or "" outside a span
func GetTraceID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).TraceID(); id.IsValid() {
		return id.String()
	}
	return ""
}

// GetSpanID is the hex span id in ctx, or "" outside a span
func GetSpanID(ctx context.Context) string {
	if id := trace.SpanContextFromContext(ctx).SpanID(); id.IsValid() {
		return id.String()
	}
	return ""
}

func pairs(kv []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			attrs = append(attrs, toAttribute(key, kv[i+1]))
		}
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	}
	return attribute.String(key, fmt.Sprint(value))
}
