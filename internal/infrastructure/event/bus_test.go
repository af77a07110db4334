package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCreatedEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	b, err := barcode.NewBarcode("123456789012", "Title 1")
	require.NoError(t, err)
	events := b.PullDomainEvents()
	require.Len(t, events, 1)
	return events[0]
}

func newRenamedEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	b, err := barcode.NewBarcode("123456789012", "Title 1")
	require.NoError(t, err)
	b.PullDomainEvents()
	require.NoError(t, b.Rename("Shelf B"))
	return b.PullDomainEvents()[0]
}

// recordingHandler collects the events it receives
type recordingHandler struct {
	eventTypes []string
	err        error
	panics     bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	created := newRecordingHandler(barcode.EventTypeBarcodeCreated)
	renamed := newRecordingHandler(barcode.EventTypeBarcodeRenamed)
	bus.Subscribe(created)
	bus.Subscribe(renamed)

	event := newCreatedEvent(t)
	require.NoError(t, bus.Publish(context.Background(), event, newCreatedEvent(t)))

	assert.Equal(t, 2, created.count())
	assert.Equal(t, event, created.handled[0])
	assert.Zero(t, renamed.count())
}

func TestInMemoryEventBus_ExplicitEventTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	handler := newRecordingHandler(barcode.EventTypeBarcodeCreated)
	bus.Subscribe(handler, barcode.EventTypeBarcodeRenamed)

	require.NoError(t, bus.Publish(context.Background(), newCreatedEvent(t), newRenamedEvent(t)))
	assert.Equal(t, 1, handler.count())
	assert.Equal(t, barcode.EventTypeBarcodeRenamed, handler.handled[0].EventType())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	all := newRecordingHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newCreatedEvent(t), newRenamedEvent(t)))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newRecordingHandler(barcode.EventTypeBarcodeCreated)
	failing.err = errors.New("handler error")
	panicking := newRecordingHandler(barcode.EventTypeBarcodeCreated)
	panicking.panics = true
	healthy := newRecordingHandler(barcode.EventTypeBarcodeCreated)

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newCreatedEvent(t)))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler(barcode.EventTypeBarcodeCreated)
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), newCreatedEvent(t))

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newCreatedEvent(t))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	assert.False(t, bus.IsRunning())
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}
