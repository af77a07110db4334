package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
)

// RateLimiter keeps one token bucket per client key. A bucket holds limit
// tokens and refills at limit per window.
// Render endpoints use it to keep one caller from queueing every browser slot.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	every   rate.Limit
	idle    time.Duration
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// Call Stop to end its sweeper goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	limit = max(limit, 1)
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		idle:    window * 2,
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// idle buckets are full again, dropping them loses nothing
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, c := range rl.clients {
				if now.Sub(c.lastSeen) > rl.idle {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) bucket(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.bucket
}

// Allow consumes one token for key and reports whether the request may proceed
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()
	return rl.bucket(key, now).AllowN(now, 1)
}

// Remaining returns the whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	rl.mu.Unlock()
	if !ok {
		return rl.limit
	}
	return max(int(c.bucket.Tokens()), 0)
}

// retryAfter is the whole seconds until one token is back
func (rl *RateLimiter) retryAfter() int {
	return max(int(math.Ceil(1/float64(rl.every))), 1)
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RenderRateLimit limits render requests per client IP and route, so export
// and print calls are counted apart.
func RenderRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP() + " " + c.FullPath()
	})
}

// RateLimitByKey limits requests using a custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(limiter.retryAfter()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
