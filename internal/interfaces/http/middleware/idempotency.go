package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client's retry key on mutating requests
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value stored per request
const MaxIdempotencyKeyLength = 255

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store     shared.IdempotencyStore
	TTL       time.Duration
	Header    string
	KeyPrefix string
	Logger    *zap.Logger
}

// Idempotency rejects a repeated request carrying the same Idempotency-Key
// for the same route with 409. Requests without the header pass through.
// A request that ends with status >= 400 releases its key so the client may
// retry it. Store failures let the request through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Header == "" {
		cfg.Header = IdempotencyKeyHeader
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "http:"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if cfg.Store == nil {
			c.Next()
			return
		}

		key := c.GetHeader(cfg.Header)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, cfg.Header+" header is too long"))
			return
		}

		storeKey := cfg.KeyPrefix + c.Request.Method + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		fresh, err := cfg.Store.MarkProcessed(ctx, storeKey, cfg.TTL)
		if err != nil {
			cfg.Logger.Warn("idempotency store unavailable, processing request",
				zap.String("route", c.FullPath()),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeDuplicateRequest, "A request with this "+cfg.Header+" was already processed"))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Forget(context.WithoutCancel(ctx), storeKey); err != nil {
				cfg.Logger.Warn("failed to release idempotency key",
					zap.String("route", c.FullPath()),
					zap.Error(err),
				)
			}
		}
	}
}
