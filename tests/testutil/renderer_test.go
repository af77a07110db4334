package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcodeprint/backend/internal/infrastructure/printing"
)

func TestFakePDFRenderer_CountsPages(t *testing.T) {
	r := NewFakePDFRenderer()

	res, err := r.Render(context.Background(), &printing.RenderRequest{
		HTML: `<div class="page">a</div><div class="page">b</div>`,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)
	assert.Len(t, r.Requests(), 1)
	assert.NotNil(t, r.LastRequest())
}

func TestFakePDFRenderer_SetError(t *testing.T) {
	r := NewFakePDFRenderer()
	r.SetError(errors.New("boom"))

	_, err := r.Render(context.Background(), &printing.RenderRequest{})

	assert.EqualError(t, err, "boom")
}
