package middleware

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the gin key RequestID stores the ID under
	RequestIDContextKey = "request_id"
)

// RequestID keeps a client supplied ID up to MaxRequestIDLength bytes and
// otherwise mints a 32 character hex ID. The ID is echoed on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > MaxRequestIDLength {
			u := uuid.New()
			id = hex.EncodeToString(u[:])
		}
		c.Set(RequestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID prefers the ID set by RequestID and falls back to the
// truncated request header for routes mounted outside it
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDContextKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	return id[:min(len(id), MaxRequestIDLength)]
}
