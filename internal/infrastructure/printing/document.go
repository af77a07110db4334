package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/barcodeprint/backend/internal/domain/printing"
)

// DocumentOptions controls how a Document is rendered
type DocumentOptions struct {
	// Title is the document title
	Title string
	// AutoPrint opens the browser print dialog once the document has loaded
	AutoPrint bool
	// FixedSize keeps the image aspect ratio inside its box; otherwise the
	// image is stretched to fill it
	FixedSize bool
}

type placedImage struct {
	Src    template.URL
	Alt    string
	X      string
	Y      string
	Width  string
	Height string
}

// Document is an HTML page set with absolutely positioned images. Every page
// has the exact physical size of the medium and the browser is told not to
// add margins, so output is never scaled.
type Document struct {
	page    printing.PageSize
	options DocumentOptions
	pages   [][]placedImage
}

// NewDocument creates an empty document for the given page size
func NewDocument(page printing.PageSize, opts DocumentOptions) *Document {
	return &Document{page: page, options: opts}
}

// AddPage starts a new page; subsequent images are placed on it
func (d *Document) AddPage() {
	d.pages = append(d.pages, nil)
}

// PlaceImage places a PNG data URI on the current page. Coordinates are in
// millimetres from the top-left corner.
func (d *Document) PlaceImage(src, alt string, x, y, w, h float64) error {
	if len(d.pages) == 0 {
		return NewRenderError(ErrCodeInvalidHTML, "no page to place image on", nil)
	}
	if w <= 0 || h <= 0 {
		return NewRenderError(ErrCodeInvalidHTML, "image box must have positive size", nil)
	}

	last := len(d.pages) - 1
	d.pages[last] = append(d.pages[last], placedImage{
		Src:    template.URL(src),
		Alt:    alt,
		X:      mm(x),
		Y:      mm(y),
		Width:  mm(w),
		Height: mm(h),
	})
	return nil
}

// PageCount is the number of pages added so far
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page is the page size of every page in the document
func (d *Document) Page() printing.PageSize {
	return d.page
}

// Render produces the complete HTML document
func (d *Document) Render() (string, error) {
	if err := validatePage(d.page); err != nil {
		return "", err
	}

	fit := "fill"
	if d.options.FixedSize {
		fit = "contain"
	}

	var buf bytes.Buffer
	err := documentTemplate.Execute(&buf, struct {
		Title     string
		PageSize  string
		Width     string
		Height    string
		Fit       string
		AutoPrint bool
		Pages     [][]placedImage
	}{
		Title:     d.options.Title,
		PageSize:  d.page.CSS(),
		Width:     mm(d.page.Width),
		Height:    mm(d.page.Height),
		Fit:       fit,
		AutoPrint: d.options.AutoPrint,
		Pages:     d.pages,
	})
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to render document", err)
	}
	return buf.String(), nil
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mm"
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
@page { size: {{.PageSize}}; margin: 0; }
html, body { margin: 0; padding: 0; }
.page { position: relative; width: {{.Width}}; height: {{.Height}}; overflow: hidden; page-break-after: always; break-after: page; }
.page:last-child { page-break-after: auto; break-after: auto; }
.page img { position: absolute; object-fit: {{.Fit}}; }
</style>
</head>
<body>
{{- range .Pages}}
<div class="page">
{{- range .}}
<img src="{{.Src}}" alt="{{.Alt}}" style="left: {{.X}}; top: {{.Y}}; width: {{.Width}}; height: {{.Height}};">
{{- end}}
</div>
{{- end}}
{{- if .AutoPrint}}
<script>window.addEventListener("load", function () { window.print(); });</script>
{{- end}}
</body>
</html>
`))

// String implements fmt.Stringer for debugging
func (d *Document) String() string {
	return fmt.Sprintf("Document(%s, %d pages)", d.page.CSS(), len(d.pages))
}
