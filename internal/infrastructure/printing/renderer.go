package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barcodeprint/backend/internal/domain/printing"
)

// RenderRequest is one HTML document to print. Page is the exact sheet
// size; content is never scaled to fit. A zero Timeout uses the renderer's
// default.
type RenderRequest struct {
	HTML    string
	Page    printing.PageSize
	Title   string
	Timeout time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF. Implementations must be safe for
// concurrent Render calls.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Failure codes carried by RenderError
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeRasterizeFailed  = "RASTERIZE_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeBinaryNotFound   = "BINARY_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
	ErrCodeNotFound         = "OUTPUT_NOT_FOUND"
)

// RenderError is a coded failure from rasterizing, rendering or storing a
// document. Index and Item name the barcode behind a RASTERIZE_FAILED;
// Index is -1 for every other code.
type RenderError struct {
	Code    string
	Message string
	Cause   error
	Index   int
	Item    string
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause, Index: -1}
}

// NewItemRenderError reports the barcode at index that could not be drawn
func NewItemRenderError(index int, item string, cause error) *RenderError {
	return &RenderError{
		Code:    ErrCodeRasterizeFailed,
		Message: fmt.Sprintf("failed to rasterize item %d (%s)", index, item),
		Cause:   cause,
		Index:   index,
		Item:    item,
	}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

// checkRequest rejects requests no renderer can print
func checkRequest(req *RenderRequest) error {
	switch {
	case req == nil:
		return NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	case strings.TrimSpace(req.HTML) == "":
		return NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	return validatePage(req.Page)
}

func validatePage(p printing.PageSize) error {
	if p.Width <= 0 || p.Height <= 0 {
		return NewRenderError(ErrCodeInvalidPaperSize, "page dimensions must be positive", nil)
	}
	return nil
}

func timeoutOf(req *RenderRequest, fallback time.Duration) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return fallback
}

// failure classifies err from a backend run under ctx
func failure(ctx context.Context, backend string, timeout time.Duration, err error) *RenderError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("%s timed out after %v", backend, timeout), err)
	case errors.Is(ctx.Err(), context.Canceled):
		return NewRenderError(ErrCodeRenderTimeout, backend+" was cancelled", err)
	}
	return NewRenderError(ErrCodeRenderFailed, backend+" failed", err)
}

// result wraps a finished PDF; an empty document is a failure
func result(pdf []byte, started time.Time) (*RenderResult, error) {
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}
	return &RenderResult{PDFData: pdf, PageCount: countPages(pdf), RenderDuration: time.Since(started)}, nil
}

// countPages counts page objects, excluding the /Pages tree nodes.
// A document always has at least one page.
func countPages(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}
