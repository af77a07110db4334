package printing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcodeprint/backend/internal/domain/printing"
)

const tinyPNG = "data:image/png;base64,iVBORw0KGgo="

func TestDocument_Render(t *testing.T) {
	doc := NewDocument(printing.PaperSizeLabel40x20.PageSize(), DocumentOptions{Title: "labels", AutoPrint: true, FixedSize: true})
	doc.AddPage()
	require.NoError(t, doc.PlaceImage(tinyPNG, "1234 5678 9012", 1, 1, 38, 18))
	doc.AddPage()
	require.NoError(t, doc.PlaceImage(tinyPNG, "9999 8888 7777", 1, 1, 38, 18))

	html, err := doc.Render()
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount())
	assert.Contains(t, html, "@page { size: 40mm 20mm; margin: 0; }")
	assert.Equal(t, 2, strings.Count(html, `<div class="page">`))
	assert.Contains(t, html, `src="`+tinyPNG+`"`)
	assert.Contains(t, html, "left: 1mm; top: 1mm; width: 38mm; height: 18mm;")
	assert.Contains(t, html, "object-fit: contain")
	assert.Contains(t, html, "window.print()")
	assert.Contains(t, html, "<title>labels</title>")
}

func TestDocument_RenderExportHasNoPrintScript(t *testing.T) {
	doc := NewDocument(printing.PaperSizeA4.PageSize(), DocumentOptions{})
	doc.AddPage()
	require.NoError(t, doc.PlaceImage(tinyPNG, "x", 10, 10, 90, 40))

	html, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, html, "window.print")
	assert.Contains(t, html, "object-fit: fill")
	assert.Contains(t, html, "size: 210mm 297mm")
}

func TestDocument_EscapesAltText(t *testing.T) {
	doc := NewDocument(printing.PaperSizeA4.PageSize(), DocumentOptions{})
	doc.AddPage()
	require.NoError(t, doc.PlaceImage(tinyPNG, `"><script>alert(1)</script>`, 10, 10, 90, 40))

	html, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestDocument_PlaceImageErrors(t *testing.T) {
	doc := NewDocument(printing.PaperSizeA4.PageSize(), DocumentOptions{})
	assert.Error(t, doc.PlaceImage(tinyPNG, "x", 0, 0, 10, 10), "no page yet")

	doc.AddPage()
	assert.Error(t, doc.PlaceImage(tinyPNG, "x", 0, 0, 0, 10))
}

func TestDocument_EmptyRendersNoPages(t *testing.T) {
	doc := NewDocument(printing.PaperSizeA4.PageSize(), DocumentOptions{})
	html, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, html, `<div class="page">`)
}

func TestDocument_InvalidPage(t *testing.T) {
	doc := NewDocument(printing.PageSize{}, DocumentOptions{})
	_, err := doc.Render()
	assert.Error(t, err)
}
