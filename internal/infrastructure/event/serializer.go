package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// EventSerializer encodes domain events as JSON and decodes them back into
// their concrete type by event type name.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() shared.DomainEvent
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() shared.DomainEvent)}
}

// Register maps eventType to a constructor for an empty event of that type
func (s *EventSerializer) Register(eventType string, factory func() shared.DomainEvent) {
	s.mu.Lock()
	s.factories[eventType] = factory
	s.mu.Unlock()
}

func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	return event, nil
}

// Types lists the registered event types in sorted order
func (s *EventSerializer) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.factories))
}
