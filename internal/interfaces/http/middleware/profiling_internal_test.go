package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractControllerFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/barcodes", "barcodes"},
		{"/api/v1/barcodes/:id", "barcodes"},
		{"/api/v1/barcodes/:id/image", "barcodes"},
		{"/api/v1/print/jobs/:id/download", "print"},
		{"/api/v2/print/export", "print"},
		{"/health", "health"},
		{"/:id", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, routeController(tt.route))
		})
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V2"))
	assert.True(t, isVersionSegment("v100"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("barcodes"))
}
