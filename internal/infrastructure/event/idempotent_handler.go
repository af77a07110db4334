package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/barcodeprint/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyMetrics counts outcomes across one or more idempotent handlers
type IdempotencyMetrics struct {
	processed, duplicate, failed atomic.Int64
}

// IdempotencyStats is a point-in-time copy of IdempotencyMetrics
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.processed.Load(),
		EventsDuplicate: m.duplicate.Load(),
		EventsFailed:    m.failed.Load(),
	}
}

// IdempotentHandler delivers each event id to the wrapped handler at most
// once. Keys are scoped by handler name so two subscribers of the same event
// do not suppress each other.
type IdempotentHandler struct {
	next    shared.EventHandler
	scope   string
	store   shared.IdempotencyStore
	cfg     shared.IdempotencyConfig
	metrics *IdempotencyMetrics
	log     *zap.Logger
}

type IdempotentHandlerOption func(*IdempotentHandler)

func WithIdempotencyConfig(cfg shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.cfg = cfg }
}

// WithIdempotencyMetrics lets several handlers report into one collector
func WithIdempotencyMetrics(m *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.metrics = m }
}

// WithHandlerName replaces the default scope, which is the handler's Go type
func WithHandlerName(name string) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.scope = name }
}

func NewIdempotentHandler(next shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		next:    next,
		scope:   fmt.Sprintf("%T", next),
		store:   store,
		cfg:     shared.DefaultIdempotencyConfig(),
		metrics: new(IdempotencyMetrics),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logger.With(zap.String("handler", h.scope))
	return h
}

func (h *IdempotentHandler) EventTypes() []string { return h.next.EventTypes() }

func (h *IdempotentHandler) GetMetrics() *IdempotencyMetrics { return h.metrics }

// Key is the store key for event under this handler's scope. The "event:"
// prefix separates it from HTTP idempotency keys sharing the store.
func (h *IdempotentHandler) Key(event shared.DomainEvent) string {
	return "event:" + h.scope + ":" + event.EventID().String()
}

// Handle claims the event key before delegating. When the store is
// unavailable the event is delivered anyway; when the wrapped handler fails
// the claim is released so a republish is retried.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.cfg.Enabled {
		return h.next.Handle(ctx, event)
	}

	key := h.Key(event)
	log := h.log.With(zap.Stringer("event_id", event.EventID()), zap.String("event_type", event.EventType()))

	claimed, err := h.store.MarkProcessed(ctx, key, h.cfg.TTL)
	switch {
	case err != nil:
		log.Warn("idempotency store unavailable, delivering event", zap.Error(err))
	case !claimed:
		h.metrics.duplicate.Add(1)
		log.Debug("skipping duplicate event")
		return nil
	}

	if err := h.next.Handle(ctx, event); err != nil {
		h.metrics.failed.Add(1)
		log.Error("event handler failed", zap.Error(err))
		if err := h.store.Forget(ctx, key); err != nil {
			log.Warn("failed to release event key", zap.Error(err))
		}
		return err
	}
	h.metrics.processed.Add(1)
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
