package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/barcodeprint/backend/internal/infrastructure/printing"
)

// FakePDFRenderer stands in for chromedp or wkhtmltopdf. It reports one PDF
// page per page container in the submitted HTML.
type FakePDFRenderer struct {
	mu       sync.Mutex
	requests []*printing.RenderRequest
	err      error
}

// NewFakePDFRenderer creates a renderer that always succeeds.
func NewFakePDFRenderer() *FakePDFRenderer {
	return &FakePDFRenderer{}
}

// Render records the request and returns a minimal PDF.
func (r *FakePDFRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &printing.RenderResult{
		PDFData:   []byte("%PDF-1.4 test"),
		PageCount: strings.Count(req.HTML, `<div class="page">`),
	}, nil
}

// Close implements printing.PDFRenderer.
func (r *FakePDFRenderer) Close() error { return nil }

// SetError makes subsequent renders fail with err.
func (r *FakePDFRenderer) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Requests returns the render requests seen so far.
func (r *FakePDFRenderer) Requests() []*printing.RenderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*printing.RenderRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// LastRequest returns the most recent render request or nil.
func (r *FakePDFRenderer) LastRequest() *printing.RenderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}
