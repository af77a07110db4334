package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/barcodeprint/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "barcode", "generate",
		telemetry.WithAttribute("count", 5),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "barcode.generate", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, int64(5), attrMap(spans[0].Attributes())["count"].AsInt64())
}

func TestSetAttributes_SkipsNonStringKeys(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "print_job.render")
	telemetry.SetAttributes(span,
		"job_kind", "EXPORT",
		42, "ignored",
		"items", int64(12),
		"fixed", true,
	)
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Len(t, attrs, 3)
	assert.Equal(t, "EXPORT", attrs["job_kind"].AsString())
	assert.Equal(t, int64(12), attrs["items"].AsInt64())
	assert.True(t, attrs["fixed"].AsBool())
}

func TestRecordErrorAndSetOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, failed := telemetry.StartSpan(context.Background(), "failed")
	telemetry.RecordError(failed, errors.New("render failed"))
	failed.End()

	_, ok := telemetry.StartSpan(context.Background(), "ok")
	telemetry.RecordError(ok, nil)
	telemetry.SetOK(ok)
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "render failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	assert.Empty(t, spans[1].Events())
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "print_job.render")
	telemetry.AddEvent(span, "page_rendered", "page", 2)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "page_rendered", events[0].Name)
	assert.Equal(t, int64(2), attrMap(events[0].Attributes)["page"].AsInt64())
}

func TestTraceIDsWithoutSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
}

func TestNilSpanHelpersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
}
