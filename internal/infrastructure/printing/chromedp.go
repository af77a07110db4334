package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromedpConfig configures the headless Chrome renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL attaches to a running browser's DevTools endpoint instead of
	// launching one
	RemoteURL string
	// ExecPath is the Chrome binary; empty searches the usual locations
	ExecPath string
	// NoSandbox is required when running as root in a container
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpRenderer prints documents through the DevTools protocol. One
// browser is shared and every Render gets its own tab.
type ChromedpRenderer struct {
	timeout time.Duration
	logger  *zap.Logger
	browser context.Context
	release context.CancelFunc
}

// NewChromedpRenderer prepares the browser allocator. The browser itself
// starts lazily on the first Render.
func NewChromedpRenderer(cfg *ChromedpConfig) (*ChromedpRenderer, error) {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	r := &ChromedpRenderer{timeout: cfg.DefaultTimeout, logger: cfg.Logger}
	if r.timeout <= 0 {
		r.timeout = 30 * time.Second
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if cfg.RemoteURL != "" {
		r.browser, r.release = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r, nil
	}
	r.browser, r.release = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	return r, nil
}

func allocatorOptions(cfg *ChromedpConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// Render loads the document into a fresh tab and prints it at the exact page
// size with zero margins and scale 1.
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	started := time.Now()
	timeout := timeoutOf(req, r.timeout)

	tab, closeTab := chromedp.NewContext(r.browser, chromedp.WithLogf(func(format string, args ...any) {
		r.logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer closeTab()
	tab, cancel := context.WithTimeout(tab, timeout)
	defer cancel()
	// the caller's cancellation also closes the tab
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, req.HTML).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = printParams(req).Do(ctx)
			return err
		}),
	)
	if err != nil {
		r.logger.Error("chrome rendering failed", zap.Error(err))
		return nil, failure(tab, "chrome", timeout, err)
	}

	res, err := result(pdf, started)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("chrome rendered document",
		zap.Int("bytes", len(res.PDFData)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res, nil
}

// printParams converts the page to Chrome's inch based paper size.
// Backgrounds are printed so dark bars survive.
func printParams(req *RenderRequest) *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPaperWidth(req.Page.Width / mmPerInch).
		WithPaperHeight(req.Page.Height / mmPerInch).
		WithMarginTop(0).
		WithMarginRight(0).
		WithMarginBottom(0).
		WithMarginLeft(0).
		WithScale(1).
		WithPrintBackground(true).
		WithPreferCSSPageSize(true)
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	r.release()
	return nil
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
