package cache

import (
	"context"
	"sync"
	"time"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// InMemoryIdempotencyStore remembers idempotency keys in this process only.
// Use the Redis store when several instances serve generate and render
// requests.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewInMemoryIdempotencyStore starts a sweeper that drops expired keys.
// Close stops it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

// MarkProcessed records key for ttl. It returns false while an earlier mark
// is still live.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expires[key]
	return ok && s.now().Before(exp), nil
}

// Forget drops key so a failed request can be retried with it
func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}
