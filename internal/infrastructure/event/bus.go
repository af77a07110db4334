package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/barcodeprint/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events synchronously, in publish order, to the
// handlers subscribed in this process. Handler errors and panics are logged
// and never reach the publisher.
type InMemoryEventBus struct {
	handlers *HandlerRegistry
	log      *zap.Logger
	running  atomic.Bool
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{handlers: NewHandlerRegistry(), log: logger.Named("events")}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, h := range b.handlers.GetHandlers(event.EventType()) {
			if err := deliver(ctx, h, event); err != nil {
				b.log.Error("event delivery failed",
					zap.String("event_type", event.EventType()),
					zap.Stringer("event_id", event.EventID()),
					zap.Stringer("aggregate_id", event.AggregateID()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// Subscribe falls back to the handler's own EventTypes when none are given
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.handlers.Register(handler, eventTypes...)
	b.log.Debug("subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.handlers.Unregister(handler)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	return nil
}

// Stop has nothing to drain since delivery happens inside Publish
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.running.Store(false)
	return nil
}

func (b *InMemoryEventBus) IsRunning() bool { return b.running.Load() }

func deliver(ctx context.Context, h shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
