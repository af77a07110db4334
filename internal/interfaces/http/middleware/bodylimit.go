package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. Declared lengths
// are checked up front; chunked bodies fail on read with *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.ErrCodePayloadTooLarge,
				fmt.Sprintf("Request body exceeds maximum allowed size of %d bytes", maxBytes)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
