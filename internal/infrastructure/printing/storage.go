package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentStorage keeps rendered documents until retention expires
type DocumentStorage interface {
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete succeeds when the document is already gone
	Delete(ctx context.Context, key string) error
	// CleanupOlderThan removes documents older than age and reports how many
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// PresignedURLProvider is implemented by sinks that can hand out
// short-lived direct download links instead of streaming bytes
type PresignedURLProvider interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

type StoreRequest struct {
	JobID uuid.UUID
	// FileName is the download name, e.g. barcodes.pdf
	FileName    string
	ContentType string
	Data        []byte
}

type StoreResult struct {
	Key  string
	URL  string
	Size int64
}

// Validate checks the request before anything is written
func (r *StoreRequest) Validate() error {
	switch {
	case r == nil:
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	case r.JobID == uuid.Nil:
		return NewRenderError(ErrCodeStorageFailed, "job ID is required", nil)
	case r.FileName == "" || r.FileName != path.Base(r.FileName) || r.FileName == "..":
		return NewRenderError(ErrCodeStorageFailed, "invalid file name", nil)
	case len(r.Data) == 0:
		return NewRenderError(ErrCodeStorageFailed, "document data is empty", nil)
	}
	return nil
}

// DocumentKey is {year}/{month}/{job_id}/{file}
func DocumentKey(jobID uuid.UUID, fileName string, at time.Time) string {
	return fmt.Sprintf("%04d/%02d/%s/%s", at.Year(), at.Month(), jobID, fileName)
}

type FileSystemStorageConfig struct {
	BasePath string // ./data/labels when empty
	BaseURL  string // /files when empty
	Logger   *zap.Logger
}

// FileSystemStorage keeps documents in a directory tree. Every access goes
// through an os.Root, so keys can never reach outside BasePath.
type FileSystemStorage struct {
	root    *os.Root
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewFileSystemStorage(cfg *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if cfg == nil {
		cfg = &FileSystemStorageConfig{}
	}
	base := cfg.BasePath
	if base == "" {
		base = "./data/labels"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create storage directory "+base, err)
	}
	root, err := os.OpenRoot(base)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open storage directory "+base, err)
	}

	s := &FileSystemStorage{
		root:    root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  cfg.Logger,
		now:     time.Now,
	}
	if s.baseURL == "" {
		s.baseURL = "/files"
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := DocumentKey(req.JobID, req.FileName, s.now())
	if err := s.root.MkdirAll(path.Dir(key), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := s.root.WriteFile(key, req.Data, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write document", err)
	}

	s.logger.Debug("document stored", zap.String("key", key), zap.Int("size", len(req.Data)))
	return &StoreResult{Key: key, URL: s.baseURL + "/" + key, Size: int64(len(req.Data))}, nil
}

func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.checkKey(ctx, key); err != nil {
		return nil, err
	}
	f, err := s.root.Open(key)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, NewRenderError(ErrCodeNotFound, "document not found", err)
	case err != nil:
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open document", err)
	}
	return f, nil
}

func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := s.checkKey(ctx, key); err != nil {
		return err
	}
	if err := s.root.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete document", err)
	}
	return nil
}

// CleanupOlderThan walks the tree and removes .pdf and .html files whose
// modification time is before now minus age. Cancellation stops the walk
// early without an error.
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deleted := 0

	err := fs.WalkDir(s.root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isDocument(p) {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := s.root.Remove(p); err == nil {
			deleted++
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("document cleanup finished", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// checkKey rejects cancelled contexts and keys that are not plain relative
// slash paths
func (s *FileSystemStorage) checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if key == "." || !fs.ValidPath(key) {
		s.logger.Warn("rejected storage key", zap.String("key", key))
		return NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return nil
}

// Close releases the directory handle
func (s *FileSystemStorage) Close() error {
	return s.root.Close()
}

func isDocument(p string) bool {
	switch path.Ext(p) {
	case ".pdf", ".html":
		return true
	}
	return false
}

var _ DocumentStorage = (*FileSystemStorage)(nil)
