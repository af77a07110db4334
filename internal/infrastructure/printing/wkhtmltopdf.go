package printing

import (
	"bytes"
	"cmp"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WkhtmltopdfConfig configures the wkhtmltopdf renderer
type WkhtmltopdfConfig struct {
	// BinaryPath is an absolute path or a name looked up in PATH
	BinaryPath     string
	DefaultTimeout time.Duration
	// DPI defaults to 300 so bars land on whole device pixels on label printers
	DPI    int
	Logger *zap.Logger
}

// WkhtmltopdfRenderer pipes the document through the wkhtmltopdf binary.
// HTML goes in on stdin and the PDF comes back on stdout.
type WkhtmltopdfRenderer struct {
	binary  string
	timeout time.Duration
	dpi     int
	logger  *zap.Logger
}

// NewWkhtmltopdfRenderer resolves the binary up front so a missing install
// fails at startup rather than on the first print.
func NewWkhtmltopdfRenderer(cfg *WkhtmltopdfConfig) (*WkhtmltopdfRenderer, error) {
	if cfg == nil {
		cfg = &WkhtmltopdfConfig{}
	}
	r := &WkhtmltopdfRenderer{
		binary:  cmp.Or(cfg.BinaryPath, "wkhtmltopdf"),
		timeout: cfg.DefaultTimeout,
		dpi:     cfg.DPI,
		logger:  cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = 30 * time.Second
	}
	if r.dpi <= 0 {
		r.dpi = 300
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	path, err := lookBinary(r.binary)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound, "wkhtmltopdf binary not found: "+r.binary, err)
	}
	r.binary = path
	return r, nil
}

func lookBinary(name string) (string, error) {
	if filepath.IsAbs(name) {
		_, err := os.Stat(name)
		return name, err
	}
	return exec.LookPath(name)
}

// Render runs one wkhtmltopdf process per document
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	started := time.Now()
	timeout := timeoutOf(req, r.timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, r.args(req)...)
	cmd.Stdin = strings.NewReader(req.HTML)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.logger.Error("wkhtmltopdf failed", zap.Error(err), zap.String("stderr", stderr.String()))
		return nil, failure(ctx, "wkhtmltopdf", timeout, err)
	}

	res, err := result(stdout.Bytes(), started)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("wkhtmltopdf rendered document",
		zap.Int("bytes", len(res.PDFData)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res, nil
}

// args sizes the page to the medium exactly. Margins are zero, shrinking is
// off and scripts never run, so the window.print hook stays inert.
func (r *WkhtmltopdfRenderer) args(req *RenderRequest) []string {
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--dpi", strconv.Itoa(r.dpi),
		"--page-width", mm(req.Page.Width),
		"--page-height", mm(req.Page.Height),
		"--margin-top", "0",
		"--margin-right", "0",
		"--margin-bottom", "0",
		"--margin-left", "0",
		"--disable-smart-shrinking",
		"--zoom", "1",
		"--print-media-type",
		"--disable-local-file-access",
		"--disable-javascript",
	}
	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}
	return append(args, "-", "-")
}

// Close is a no-op; nothing outlives a Render call
func (r *WkhtmltopdfRenderer) Close() error {
	return nil
}

var _ PDFRenderer = (*WkhtmltopdfRenderer)(nil)
