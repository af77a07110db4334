package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/barcodeprint/backend/internal/domain/shared"
	"github.com/barcodeprint/backend/internal/infrastructure/logger"
	infra "github.com/barcodeprint/backend/internal/infrastructure/printing"
	"github.com/barcodeprint/backend/internal/infrastructure/telemetry"
)

// cleanupBatchSize is how many expired jobs are removed per query
const cleanupBatchSize = 100

// RenderTracker observes document renders
type RenderTracker interface {
	// TrackRender marks a render as started and returns the func that ends it
	TrackRender(ctx context.Context, kind, renderer string) func()
}

// LabelServiceConfig holds the tunables of LabelService
type LabelServiceConfig struct {
	Layout            printing.LayoutConfig
	MaxConcurrentJobs int
	RenderTimeout     time.Duration
	// RendererName labels metrics and profiles, e.g. "chromedp"
	RendererName string
}

// DefaultLabelServiceConfig returns the standard layout with one job at a time
func DefaultLabelServiceConfig() LabelServiceConfig {
	return LabelServiceConfig{
		Layout:            printing.DefaultLayoutConfig(),
		MaxConcurrentJobs: 1,
		RenderTimeout:     60 * time.Second,
		RendererName:      "chromedp",
	}
}

// LabelService exports barcodes to PDF and prepares print documents for
// label printers. Every call is recorded as a PrintJob.
type LabelService struct {
	barcodes   barcode.BarcodeRepository
	jobs       printing.PrintJobRepository
	rasterizer infra.Rasterizer
	renderer   infra.PDFRenderer
	storage    infra.DocumentStorage
	config     LabelServiceConfig
	slots      *semaphore.Weighted
	events     shared.EventPublisher
	tracker    RenderTracker
	logger     *zap.Logger
}

// LabelServiceOption configures optional collaborators
type LabelServiceOption func(*LabelService)

// WithEvents publishes job events after every state change
func WithEvents(p shared.EventPublisher) LabelServiceOption {
	return func(s *LabelService) {
		s.events = p
	}
}

// WithRenderTracker reports renders to tracker
func WithRenderTracker(t RenderTracker) LabelServiceOption {
	return func(s *LabelService) {
		s.tracker = t
	}
}

// NewLabelService creates a new LabelService
func NewLabelService(
	barcodes barcode.BarcodeRepository,
	jobs printing.PrintJobRepository,
	rasterizer infra.Rasterizer,
	renderer infra.PDFRenderer,
	storage infra.DocumentStorage,
	config LabelServiceConfig,
	log *zap.Logger,
	opts ...LabelServiceOption,
) *LabelService {
	if log == nil {
		log = zap.NewNop()
	}
	if config.MaxConcurrentJobs < 1 {
		config.MaxConcurrentJobs = 1
	}
	if config.Layout == (printing.LayoutConfig{}) {
		config.Layout = printing.DefaultLayoutConfig()
	}
	s := &LabelService{
		barcodes:   barcodes,
		jobs:       jobs,
		rasterizer: rasterizer,
		renderer:   renderer,
		storage:    storage,
		config:     config,
		slots:      semaphore.NewWeighted(int64(config.MaxConcurrentJobs)),
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// batch is one validated export or print call
type batch struct {
	kind     printing.JobKind
	paper    printing.PaperSize
	mode     printing.LayoutMode
	settings barcode.Settings
}

// Export renders the selected barcodes into a PDF saved as barcodes.pdf
func (s *LabelService) Export(ctx context.Context, req ExportRequest) (*JobResponse, error) {
	paper := printing.PaperSizeA4
	if req.PaperSize != "" {
		paper = printing.PaperSize(req.PaperSize)
	}
	if !paper.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAPER_SIZE", "Unsupported paper size: "+req.PaperSize)
	}
	mode := paper.DefaultLayoutMode()
	if req.LayoutMode != "" {
		mode = printing.LayoutMode(req.LayoutMode)
	}

	return s.run(ctx, batch{
		kind:     printing.JobKindExport,
		paper:    paper,
		mode:     mode,
		settings: req.Settings.apply(barcode.DefaultSettings()).WithSelection(req.BarcodeIDs),
	})
}

// Print lays out one barcode per label at the exact label size and produces
// an HTML document that opens the print dialog when loaded
func (s *LabelService) Print(ctx context.Context, req PrintRequest) (*JobResponse, error) {
	size := barcode.LabelSize(req.LabelSize)
	paper, ok := printing.PaperSizeForLabel(size)
	if !ok {
		return nil, shared.NewDomainError(barcode.CodeInvalidSettings, "paper_size must be 20mm or 40mm when printing")
	}

	return s.run(ctx, batch{
		kind:     printing.JobKindPrint,
		paper:    paper,
		mode:     printing.LayoutModeSingle,
		settings: req.Settings.apply(barcode.DefaultPrintSettings(size)).WithSelection(req.BarcodeIDs),
	})
}

func (s *LabelService) run(ctx context.Context, b batch) (*JobResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "print_job", string(b.kind),
		telemetry.WithAttribute("print_job.paper_size", b.paper.String()),
		telemetry.WithAttribute("print_job.layout_mode", b.mode.String()))
	defer span.End()

	if err := b.settings.Validate(); err != nil {
		return nil, err
	}
	ids := uniqueIDs(b.settings.SelectedIDs)
	if len(ids) == 0 {
		return nil, shared.NewDomainError("EMPTY_JOB", "No barcodes selected")
	}
	if len(ids) > printing.MaxJobItems {
		return nil, shared.NewDomainError("JOB_TOO_LARGE",
			fmt.Sprintf("At most %d barcodes can be exported at once", printing.MaxJobItems))
	}

	records, err := s.resolve(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	layout, err := printing.Plan(b.mode, len(records), b.paper, s.config.Layout)
	if err != nil {
		return nil, err
	}
	job, err := printing.NewPrintJob(b.kind, b.paper, b.mode, ids)
	if err != nil {
		return nil, err
	}

	// one call renders at a time per slot; waiting honours ctx
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a render slot: %w", err)
	}
	defer s.slots.Release(1)

	// from here the batch runs to completion even if the client goes away
	jobCtx, _ := logger.WithJobID(ctx, s.logger, job.ID.String())
	ctx = context.WithoutCancel(jobCtx)
	log := logger.WithLogger(ctx, s.logger)
	telemetry.SetAttributes(span, "print_job.id", job.ID.String(), "print_job.items", len(records))

	if err := job.StartRendering(layout.PageCount); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save print job: %w", err)
	}
	s.publish(ctx, job)

	var renderErr error
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: "print_job.render",
		telemetry.ProfilingLabelJobKind:   b.kind.String(),
		telemetry.ProfilingLabelPaper:     b.paper.String(),
		telemetry.ProfilingLabelRenderer:  s.rendererName(b.kind),
	}, func(ctx context.Context) {
		renderErr = s.render(ctx, job, records, layout, b)
	})
	if renderErr != nil {
		telemetry.RecordError(span, renderErr)
		s.fail(ctx, job, renderErr)
		log.Error("print job failed",
			zap.String("kind", b.kind.String()),
			zap.Int("items", len(records)),
			zap.Error(renderErr))
		return nil, renderErr
	}

	log.Info("print job completed",
		zap.String("kind", b.kind.String()),
		zap.String("paper_size", b.paper.String()),
		zap.Int("items", job.ItemCount),
		zap.Int("pages", job.PageCount),
		zap.String("output_key", job.OutputKey))
	telemetry.SetOK(span)

	resp := ToJobResponse(job)
	return &resp, nil
}

// resolve loads the records in the order the IDs were given
func (s *LabelService) resolve(ctx context.Context, ids []uuid.UUID) ([]barcode.Barcode, error) {
	found, err := s.barcodes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load barcodes: %w", err)
	}
	byID := make(map[uuid.UUID]barcode.Barcode, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	ordered := make([]barcode.Barcode, 0, len(ids))
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Barcode not found: "+id.String())
		}
		ordered = append(ordered, b)
	}
	return ordered, nil
}

// render rasterizes every item strictly in input order, assembles the
// document and stores it. Nothing is stored if any item fails.
func (s *LabelService) render(ctx context.Context, job *printing.PrintJob, records []barcode.Barcode, layout printing.Layout, b batch) error {
	if s.tracker != nil {
		defer s.tracker.TrackRender(ctx, b.kind.String(), s.rendererName(b.kind))()
	}

	html, err := s.compose(records, layout, b)
	if err != nil {
		return err
	}

	data := []byte(html)
	fileName, contentType := PrintFileName, PrintContentType
	if b.kind == printing.JobKindExport {
		if s.renderer == nil {
			return infra.NewRenderError(infra.ErrCodeRenderFailed, "no PDF renderer configured", nil)
		}
		result, err := s.renderer.Render(ctx, &infra.RenderRequest{
			HTML:    html,
			Page:    layout.Page,
			Title:   "Barcodes",
			Timeout: s.config.RenderTimeout,
		})
		if err != nil {
			return err
		}
		data = result.PDFData
		fileName, contentType = ExportFileName, ExportContentType
	}

	stored, err := s.storage.Store(ctx, &infra.StoreRequest{
		JobID:       job.ID,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	if err := job.Complete(stored.Key, stored.URL, fileName, contentType); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		// the row still says RENDERING; drop the orphaned document
		if derr := s.storage.Delete(ctx, stored.Key); derr != nil {
			s.logger.Warn("failed to remove orphaned document", zap.String("key", stored.Key), zap.Error(derr))
		}
		return fmt.Errorf("failed to save print job: %w", err)
	}
	s.publish(ctx, job)
	return nil
}

// compose builds the HTML document. The scratch area belongs to this call
// and is released on every return path.
func (s *LabelService) compose(records []barcode.Barcode, layout printing.Layout, b batch) (string, error) {
	scratch := infra.AcquireScratch()
	defer scratch.Release()

	profile := b.settings.Profile(b.kind.RenderMode())
	doc := infra.NewDocument(layout.Page, infra.DocumentOptions{
		Title:     "Barcodes",
		AutoPrint: b.kind == printing.JobKindPrint,
		FixedSize: b.settings.FixedSize,
	})

	page := -1
	for _, p := range layout.Placements {
		for page < p.PageIndex {
			doc.AddPage()
			page++
		}

		rec := records[p.Index]
		img, err := s.rasterizer.Rasterize(rec.Digits(), profile)
		if err != nil {
			return "", infra.NewItemRenderError(p.Index, rec.Code, err)
		}
		src, err := scratch.EncodeDataURI(img)
		if err != nil {
			return "", infra.NewItemRenderError(p.Index, rec.Code, err)
		}
		if err := doc.PlaceImage(src, rec.Code, p.X, p.Y, p.Width, p.Height); err != nil {
			return "", err
		}
	}
	return doc.Render()
}

func (s *LabelService) fail(ctx context.Context, job *printing.PrintJob, cause error) {
	if err := job.Fail(failureMessage(cause)); err != nil {
		s.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.Error("failed to save failed job", zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}
	s.publish(ctx, job)
}

func failureMessage(err error) string {
	var re *infra.RenderError
	if errors.As(err, &re) {
		return re.Code + ": " + re.Error()
	}
	return err.Error()
}

func (s *LabelService) rendererName(kind printing.JobKind) string {
	if kind == printing.JobKindPrint {
		return "html"
	}
	return s.config.RendererName
}

func (s *LabelService) publish(ctx context.Context, job *printing.PrintJob) {
	events := job.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish print job events", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

// =============================================================================
// Job history and outputs
// =============================================================================

// GetJob returns one job
func (s *LabelService) GetJob(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	job, err := s.findJob(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// ListJobs returns job history, newest first
func (s *LabelService) ListJobs(ctx context.Context, req ListJobsRequest) (*JobListResponse, error) {
	filter := printing.PrintJobFilter{
		Filter: shared.Filter{
			Page:     max(req.Page, 1),
			PageSize: req.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if req.Kind != "" {
		kind := printing.JobKind(req.Kind)
		if !kind.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid job kind: "+req.Kind)
		}
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := printing.JobStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid job status: "+req.Status)
		}
		filter.Status = &status
	}

	jobs, err := s.jobs.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	total, err := s.jobs.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count print jobs: %w", err)
	}

	items := make([]JobResponse, len(jobs))
	for i := range jobs {
		items[i] = ToJobResponse(&jobs[i])
	}
	return &JobListResponse{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// OpenOutput opens the stored document of a completed job. Sinks that hand
// out presigned links return a redirect instead of a body.
func (s *LabelService) OpenOutput(ctx context.Context, id uuid.UUID) (*JobOutput, error) {
	job, err := s.findJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsCompleted() || !job.HasOutput() {
		return nil, shared.NewDomainError("INVALID_STATE", "Job has no output: status "+job.Status.String())
	}

	out := &JobOutput{FileName: job.FileName, ContentType: job.ContentType}
	if presigner, ok := s.storage.(infra.PresignedURLProvider); ok {
		url, err := presigner.PresignedURL(ctx, job.OutputKey)
		if err != nil {
			return nil, fmt.Errorf("failed to presign output: %w", err)
		}
		out.RedirectURL = url
		return out, nil
	}

	body, err := s.storage.Get(ctx, job.OutputKey)
	if err != nil {
		var re *infra.RenderError
		if errors.As(err, &re) && re.Code == infra.ErrCodeNotFound {
			return nil, shared.NewDomainError("NOT_FOUND", "Job output no longer exists")
		}
		return nil, fmt.Errorf("failed to open output: %w", err)
	}
	out.Body = body
	return out, nil
}

// CleanupOutputs removes jobs whose output is older than retention together
// with their documents, then sweeps stray documents. It returns the number
// of jobs removed.
func (s *LabelService) CleanupOutputs(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	removed := 0

	for {
		expired, err := s.jobs.FindCompletedBefore(ctx, cutoff, cleanupBatchSize)
		if err != nil {
			return removed, fmt.Errorf("failed to find expired jobs: %w", err)
		}
		if len(expired) == 0 {
			break
		}
		for i := range expired {
			job := &expired[i]
			if err := s.storage.Delete(ctx, job.OutputKey); err != nil {
				return removed, fmt.Errorf("failed to delete output of job %s: %w", job.ID, err)
			}
			if err := s.jobs.Delete(ctx, job.ID); err != nil {
				return removed, fmt.Errorf("failed to delete job %s: %w", job.ID, err)
			}
			removed++
		}
		if len(expired) < cleanupBatchSize {
			break
		}
	}

	swept, err := s.storage.CleanupOlderThan(ctx, retention)
	if err != nil {
		s.logger.Warn("document sweep failed", zap.Error(err))
	}
	if removed > 0 || swept > 0 {
		s.logger.Info("print outputs cleaned up", zap.Int("jobs", removed), zap.Int("documents", swept))
	}
	return removed, nil
}

// =============================================================================
// Reference data
// =============================================================================

// PaperSizes lists the supported media with their grid capacity
func (s *LabelService) PaperSizes() []PaperSizeResponse {
	sizes := printing.AllPaperSizes()
	out := make([]PaperSizeResponse, 0, len(sizes))
	for _, p := range sizes {
		page := p.PageSize()
		perPage := 1
		if p.DefaultLayoutMode() == printing.LayoutModeGrid {
			if l, err := printing.Plan(printing.LayoutModeGrid, 0, p, s.config.Layout); err == nil {
				perPage = l.ItemsPerPage
			}
		}
		out = append(out, PaperSizeResponse{
			Code:          p.String(),
			Name:          p.DisplayName(),
			WidthMM:       page.Width,
			HeightMM:      page.Height,
			IsLabel:       p.IsLabel(),
			DefaultLayout: p.DefaultLayoutMode().String(),
			ItemsPerPage:  perPage,
		})
	}
	return out
}

// SettingsDefaults returns the starting settings and accepted ranges
func (s *LabelService) SettingsDefaults() SettingsDefaultsResponse {
	return SettingsDefaultsResponse{
		Export: toSettingsView(barcode.DefaultSettings()),
		Print: map[string]SettingsView{
			string(barcode.LabelSize20mm): toSettingsView(barcode.DefaultPrintSettings(barcode.LabelSize20mm)),
			string(barcode.LabelSize40mm): toSettingsView(barcode.DefaultPrintSettings(barcode.LabelSize40mm)),
		},
		ExportRanges: barcode.RangesFor(false),
		PrintRanges:  barcode.RangesFor(true),
	}
}

func (s *LabelService) findJob(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return job, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
