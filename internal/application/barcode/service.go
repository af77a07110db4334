package barcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/barcodeprint/backend/internal/domain/barcode"
	"github.com/barcodeprint/backend/internal/domain/shared"
	infra "github.com/barcodeprint/backend/internal/infrastructure/printing"
	"github.com/barcodeprint/backend/internal/infrastructure/telemetry"
)

// maxCodeAttempts bounds regeneration when a fresh code already exists
const maxCodeAttempts = 5

// ErrCodeSpaceExhausted is returned when no unused code could be found
var ErrCodeSpaceExhausted = shared.NewDomainError("CODE_COLLISION", "Could not generate a unique code, please retry")

// BarcodeService manages barcode records: generation, listing, renaming,
// deletion and preview rendering
type BarcodeService struct {
	repo       barcode.BarcodeRepository
	generator  *barcode.CodeGenerator
	rasterizer infra.Rasterizer
	events     shared.EventPublisher
	logger     *zap.Logger
}

// Option configures a BarcodeService
type Option func(*BarcodeService)

// WithGenerator replaces the random code generator
func WithGenerator(g *barcode.CodeGenerator) Option {
	return func(s *BarcodeService) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithRasterizer sets the rasterizer used for preview images
func WithRasterizer(r infra.Rasterizer) Option {
	return func(s *BarcodeService) {
		if r != nil {
			s.rasterizer = r
		}
	}
}

// WithEventPublisher sets where domain events are published after a change
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *BarcodeService) {
		s.events = p
	}
}

// NewBarcodeService creates a new BarcodeService
func NewBarcodeService(repo barcode.BarcodeRepository, logger *zap.Logger, opts ...Option) *BarcodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BarcodeService{
		repo:       repo,
		generator:  barcode.NewCodeGenerator(),
		rasterizer: infra.NewCode128Rasterizer(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate creates count new barcodes titled "Title 1".."Title N" and
// stores them in one batch. Returned records are in generation order.
func (s *BarcodeService) Generate(ctx context.Context, req GenerateRequest) ([]BarcodeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "barcode", "generate",
		telemetry.WithAttribute("barcode.count", req.Count))
	defer span.End()

	if req.Count < MinGenerateCount || req.Count > MaxGenerateCount {
		return nil, shared.NewDomainError(barcode.CodeInvalidCount,
			fmt.Sprintf("Count must be between %d and %d", MinGenerateCount, MaxGenerateCount))
	}

	seen := make(map[string]struct{}, req.Count)
	records := make([]*barcode.Barcode, 0, req.Count)
	for i := range req.Count {
		code, err := s.uniqueCode(ctx, seen)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		b, err := barcode.NewBarcode(code, barcode.DefaultTitle(i))
		if err != nil {
			// generated codes are always well formed
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("generated code rejected: %w", err)
		}
		records = append(records, b)
	}

	if err := s.repo.SaveBatch(ctx, records); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to save generated barcodes", zap.Int("count", req.Count), zap.Error(err))
		return nil, fmt.Errorf("failed to save barcodes: %w", err)
	}

	result := make([]BarcodeResponse, len(records))
	var events []shared.DomainEvent
	for i, b := range records {
		result[i] = ToBarcodeResponse(b)
		events = append(events, b.PullDomainEvents()...)
	}
	s.publish(ctx, events)

	s.logger.Info("barcodes generated", zap.Int("count", len(records)))
	telemetry.SetOK(span)
	return result, nil
}

// uniqueCode draws codes until one is neither stored nor already in this batch
func (s *BarcodeService) uniqueCode(ctx context.Context, seen map[string]struct{}) (string, error) {
	for range maxCodeAttempts {
		code, err := barcode.Format(s.generator.Generate())
		if err != nil {
			return "", err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		exists, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if exists {
			s.logger.Debug("generated code already exists, retrying", zap.String("code", code))
			continue
		}
		seen[code] = struct{}{}
		return code, nil
	}
	return "", ErrCodeSpaceExhausted
}

// List returns one page of barcodes, newest first unless ordered otherwise
func (s *BarcodeService) List(ctx context.Context, req ListBarcodesRequest) (*BarcodeListResponse, error) {
	filter := toFilter(req)

	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list barcodes: %w", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count barcodes: %w", err)
	}

	return &BarcodeListResponse{
		Items:    ToBarcodeResponses(items),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func toFilter(req ListBarcodesRequest) shared.Filter {
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	return filter
}

// Get returns one barcode
func (s *BarcodeService) Get(ctx context.Context, id uuid.UUID) (*BarcodeResponse, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBarcodeResponse(b)
	return &resp, nil
}

// Lookup finds the barcode printed with code. Both the grouped and the raw
// digit forms are accepted, as a scanner returns the raw digits.
func (s *BarcodeService) Lookup(ctx context.Context, code string) (*BarcodeResponse, error) {
	normalized, err := barcode.Normalize(code)
	if err != nil {
		return nil, shared.NewDomainError(barcode.CodeInvalidCode, "Invalid barcode code: "+code)
	}
	b, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Barcode not found")
		}
		return nil, fmt.Errorf("failed to look up barcode: %w", err)
	}
	resp := ToBarcodeResponse(b)
	return &resp, nil
}

// Rename trims and stores a new title. Code and ID never change.
func (s *BarcodeService) Rename(ctx context.Context, id uuid.UUID, req RenameRequest) (*BarcodeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "barcode", "rename",
		telemetry.WithAttribute("barcode.id", id.String()))
	defer span.End()

	b, err := s.find(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := b.Rename(req.Title); err != nil {
		return nil, err
	}

	events := b.PullDomainEvents()
	if len(events) > 0 {
		if err := s.repo.UpdateTitle(ctx, id, b.Title); err != nil {
			telemetry.RecordError(span, err)
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Barcode not found")
			}
			s.logger.Error("failed to rename barcode", zap.String("id", id.String()), zap.Error(err))
			return nil, fmt.Errorf("failed to rename barcode: %w", err)
		}
		s.publish(ctx, events)
		s.logger.Info("barcode renamed", zap.String("id", id.String()))
	}

	telemetry.SetOK(span)
	resp := ToBarcodeResponse(b)
	return &resp, nil
}

// Delete removes one barcode
func (s *BarcodeService) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Barcode not found")
		}
		s.logger.Error("failed to delete barcode", zap.String("id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete barcode: %w", err)
	}

	b.MarkDeleted()
	s.publish(ctx, b.PullDomainEvents())
	s.logger.Info("barcode deleted", zap.String("id", id.String()), zap.String("code", b.Code))
	return nil
}

// DeleteMany removes every listed barcode that exists. Unknown IDs are
// ignored; the response tells how many rows were removed.
func (s *BarcodeService) DeleteMany(ctx context.Context, req BatchDeleteRequest) (*BatchDeleteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "barcode", "delete_many",
		telemetry.WithAttribute("barcode.count", len(req.IDs)))
	defer span.End()

	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one id is required")
	}

	existing, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load barcodes: %w", err)
	}

	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to delete barcodes", zap.Int("count", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to delete barcodes: %w", err)
	}

	var events []shared.DomainEvent
	for i := range existing {
		existing[i].MarkDeleted()
		events = append(events, existing[i].PullDomainEvents()...)
	}
	s.publish(ctx, events)

	s.logger.Info("barcodes deleted", zap.Int("requested", len(req.IDs)), zap.Int64("deleted", deleted))
	telemetry.SetOK(span)
	return &BatchDeleteResponse{Requested: len(req.IDs), Deleted: deleted}, nil
}

// Preview renders one barcode as PNG with the constants of mode
func (s *BarcodeService) Preview(ctx context.Context, id uuid.UUID, mode barcode.RenderMode) (*PreviewImage, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mode.IsValid() {
		mode = barcode.RenderModeDisplay
	}

	img, err := s.rasterizer.Rasterize(b.Digits(), barcode.ProfileFor(mode))
	if err != nil {
		return nil, infra.NewItemRenderError(0, b.Code, err)
	}

	scratch := infra.AcquireScratch()
	defer scratch.Release()

	data, err := scratch.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &PreviewImage{BarcodeID: b.ID, Mode: mode, PNG: data}, nil
}

// CountBarcodes returns the number of stored barcodes
func (s *BarcodeService) CountBarcodes(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, shared.Filter{})
}

func (s *BarcodeService) find(ctx context.Context, id uuid.UUID) (*barcode.Barcode, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Barcode not found")
		}
		return nil, fmt.Errorf("failed to get barcode: %w", err)
	}
	return b, nil
}

func (s *BarcodeService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish barcode events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
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
