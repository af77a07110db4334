package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(BodyLimit(64))
	router.POST("/barcodes/generate", func(c *gin.Context) {
		var body struct {
			Count int `json:"count"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.String(http.StatusRequestEntityTooLarge, "streamed body too large")
				return
			}
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusCreated, "ok")
	})

	tests := []struct {
		name       string
		body       string
		chunked    bool
		want       int
		wantInBody string
	}{
		{"within limit", `{"count": 5}`, false, http.StatusCreated, "ok"},
		{"declared length over limit", `{"count": 5, "pad": "` + strings.Repeat("x", 100) + `"}`, false, http.StatusRequestEntityTooLarge, "ERR_PAYLOAD_TOO_LARGE"},
		{"chunked body over limit", `{"count": 5, "pad": "` + strings.Repeat("x", 100) + `"}`, true, http.StatusRequestEntityTooLarge, "streamed body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/barcodes/generate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantInBody)
		})
	}
}
