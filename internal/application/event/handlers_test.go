package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/infrastructure/cache"
	infraevent "github.com/barcodeprint/backend/internal/infrastructure/event"
)

type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordGenerated(ctx context.Context, n int) {
	m.Called(ctx, n)
}

func (m *MockBusinessMetrics) RecordDeleted(ctx context.Context, n int) {
	m.Called(ctx, n)
}

func (m *MockBusinessMetrics) RecordJobCreated(ctx context.Context, kind, paper string, items int) {
	m.Called(ctx, kind, paper, items)
}

func (m *MockBusinessMetrics) RecordJobFinished(ctx context.Context, kind, status string) {
	m.Called(ctx, kind, status)
}

func newBarcode(t *testing.T) *barcode.Barcode {
	t.Helper()
	b, err := barcode.NewBarcode("123456789012", "Title 1")
	require.NoError(t, err)
	b.ClearDomainEvents()
	return b
}

func newJob(t *testing.T) *printing.PrintJob {
	t.Helper()
	job, err := printing.NewPrintJob(printing.JobKindPrint, printing.PaperSizeLabel40x20, printing.LayoutModeSingle, []uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, err)
	job.ClearDomainEvents()
	return job
}

func TestAuditLogHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))

	b := newBarcode(t)
	require.NoError(t, b.Rename("Shelf A"))
	events := b.PullDomainEvents()
	require.Len(t, events, 1)

	require.NoError(t, h.Handle(context.Background(), events[0]))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, barcode.EventTypeBarcodeRenamed, fields["event_type"])
	assert.Equal(t, "Title 1", fields["old_title"])
	assert.Equal(t, "Shelf A", fields["new_title"])
	assert.Equal(t, b.ID.String(), fields["aggregate_id"])
}

func TestAuditLogHandler_JobFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))

	job := newJob(t)
	require.NoError(t, job.StartRendering(2))
	require.NoError(t, job.Fail("RASTERIZE_FAILED: bad symbol"))

	for _, e := range job.PullDomainEvents() {
		require.NoError(t, h.Handle(context.Background(), e))
	}

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "PRINT", fields["kind"])
	assert.Equal(t, "RASTERIZE_FAILED: bad symbol", fields["error"])
}

func TestAuditLogHandler_WithPayloadEncoder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core), WithPayloadEncoder(infraevent.NewEventSerializer()))

	b := newBarcode(t)
	require.NoError(t, b.Rename("Bin 7"))
	events := b.PullDomainEvents()
	require.Len(t, events, 1)

	require.NoError(t, h.Handle(context.Background(), events[0]))

	require.Equal(t, 1, logs.Len())
	payload, ok := logs.All()[0].ContextMap()["payload"].(string)
	require.True(t, ok)
	assert.Contains(t, payload, "Bin 7")
	assert.Contains(t, payload, b.ID.String())
}

func TestAuditLogHandler_EventTypes(t *testing.T) {
	assert.Len(t, NewAuditLogHandler(nil).EventTypes(), 6)
}

func TestMetricsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	m := new(MockBusinessMetrics)
	h := NewMetricsHandler(m)

	b := newBarcode(t)
	job := newJob(t)

	m.On("RecordGenerated", ctx, 1).Once()
	m.On("RecordDeleted", ctx, 1).Once()
	m.On("RecordJobCreated", ctx, "PRINT", "LABEL_40X20", 2).Once()
	m.On("RecordJobFinished", ctx, "PRINT", "COMPLETED").Once()

	require.NoError(t, h.Handle(ctx, barcode.NewBarcodeCreatedEvent(b)))
	require.NoError(t, h.Handle(ctx, barcode.NewBarcodeDeletedEvent(b)))
	require.NoError(t, h.Handle(ctx, printing.NewPrintJobCreatedEvent(job)))

	require.NoError(t, job.StartRendering(2))
	require.NoError(t, job.Complete("2026/10/x/labels.html", "/files/x", "labels.html", "text/html"))
	for _, e := range job.PullDomainEvents() {
		require.NoError(t, h.Handle(ctx, e))
	}

	m.AssertExpectations(t)

	err := h.Handle(ctx, barcode.NewBarcodeRenamedEvent(b, "old"))
	assert.Error(t, err)
}

func TestMetricsHandler_NilMetrics(t *testing.T) {
	h := NewMetricsHandler(nil)
	assert.NoError(t, h.Handle(context.Background(), barcode.NewBarcodeCreatedEvent(newBarcode(t))))
}

func TestMetricsHandler_DeduplicatedOnBus(t *testing.T) {
	ctx := context.Background()
	m := new(MockBusinessMetrics)
	m.On("RecordGenerated", mock.Anything, 1).Return()

	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	bus := infraevent.NewInMemoryEventBus(nil)
	handler := infraevent.NewIdempotentHandler(NewMetricsHandler(m), store, nil, infraevent.WithHandlerName("metrics"))
	bus.Subscribe(handler)

	created := barcode.NewBarcodeCreatedEvent(newBarcode(t))
	require.NoError(t, bus.Publish(ctx, created))
	require.NoError(t, bus.Publish(ctx, created))

	m.AssertNumberOfCalls(t, "RecordGenerated", 1)
	assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsDuplicate)
}
