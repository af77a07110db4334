package cache

import (
	"fmt"

	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type storeOptions struct {
	logger   *zap.Logger
	fallback bool
}

type StoreOption func(*storeOptions)

func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInMemoryFallback decides whether an unreachable Redis degrades to the
// in-process store. It does by default.
func WithInMemoryFallback(allow bool) StoreOption {
	return func(o *storeOptions) { o.fallback = allow }
}

// NewIdempotencyStore opens the backend named by idempotency.backend.
// An empty backend means memory.
func NewIdempotencyStore(idem config.IdempotencyConfig, redisCfg config.RedisConfig, opts ...StoreOption) (shared.IdempotencyStore, error) {
	o := storeOptions{logger: zap.NewNop(), fallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	switch idem.Backend {
	case "", BackendMemory:
		o.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case BackendRedis:
	default:
		return nil, fmt.Errorf("unsupported idempotency backend: %s", idem.Backend)
	}

	store, err := NewRedisIdempotencyStore(redisCfg)
	switch {
	case err == nil:
		o.logger.Info("using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
		return store, nil
	case !o.fallback:
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}
	o.logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}
