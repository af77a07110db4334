package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barcodeprint/backend/internal/domain/barcode"
)

func TestPaperSize(t *testing.T) {
	tests := []struct {
		size   PaperSize
		valid  bool
		w, h   float64
		label  bool
		layout LayoutMode
	}{
		{PaperSizeA4, true, 210, 297, false, LayoutModeGrid},
		{PaperSizeLabel40x20, true, 40, 20, true, LayoutModeSingle},
		{PaperSizeLabel20x10, true, 20, 10, true, LayoutModeSingle},
		{PaperSize("A3"), false, 210, 297, false, LayoutModeGrid},
	}
	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.size.IsValid())
			w, h := tt.size.Dimensions()
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
			assert.Equal(t, tt.label, tt.size.IsLabel())
			assert.Equal(t, tt.layout, tt.size.DefaultLayoutMode())
		})
	}
	assert.Len(t, AllPaperSizes(), 3)
}

func TestPaperSizeForLabel(t *testing.T) {
	p, ok := PaperSizeForLabel(barcode.LabelSize40mm)
	assert.True(t, ok)
	assert.Equal(t, PaperSizeLabel40x20, p)

	p, ok = PaperSizeForLabel(barcode.LabelSize20mm)
	assert.True(t, ok)
	assert.Equal(t, PaperSizeLabel20x10, p)

	_, ok = PaperSizeForLabel("30mm")
	assert.False(t, ok)
}

func TestEnumDisplayNames(t *testing.T) {
	assert.Equal(t, "Grid", LayoutModeGrid.DisplayName())
	assert.Equal(t, "Export", JobKindExport.DisplayName())
	assert.Equal(t, "Label 40 x 20 mm", PaperSizeLabel40x20.DisplayName())
}

func TestJobKind_RenderMode(t *testing.T) {
	assert.Equal(t, barcode.RenderModeExport, JobKindExport.RenderMode())
	assert.Equal(t, barcode.RenderModePrint, JobKindPrint.RenderMode())
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusRendering, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusRendering, JobStatusCompleted, true},
		{JobStatusRendering, JobStatusFailed, true},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusRendering, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.False(t, JobStatusRendering.IsTerminal())
}
