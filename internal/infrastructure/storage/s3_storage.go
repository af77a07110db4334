// Package storage keeps rendered label documents in an S3 compatible bucket
// (AWS S3, MinIO, RustFS).
package storage

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/barcodeprint/backend/internal/infrastructure/config"
	infra "github.com/barcodeprint/backend/internal/infrastructure/printing"
)

var (
	_ infra.DocumentStorage      = (*S3DocumentStorage)(nil)
	_ infra.PresignedURLProvider = (*S3DocumentStorage)(nil)
)

// S3DocumentStorage uses the same {year}/{month}/{job}/{file} keys as the
// filesystem sink. Downloads are served through presigned URLs.
type S3DocumentStorage struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	urlPrefix string
	expires   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*S3DocumentStorage)

func WithLogger(logger *zap.Logger) Option {
	return func(s *S3DocumentStorage) { s.logger = logger }
}

// WithPresignExpiration sets how long download links stay valid
func WithPresignExpiration(d time.Duration) Option {
	return func(s *S3DocumentStorage) { s.expires = d }
}

func NewS3DocumentStorage(cfg *config.StorageConfig, opts ...Option) (*S3DocumentStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	switch "" {
	case cfg.Bucket:
		return nil, errors.New("storage bucket is required")
	case cfg.AccessKey:
		return nil, errors.New("storage access key is required")
	case cfg.SecretKey:
		return nil, errors.New("storage secret key is required")
	}
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cmp.Or(cfg.Region, "us-east-1")),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	s := &S3DocumentStorage{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		urlPrefix: strings.TrimRight(cfg.URLPrefix, "/"),
		expires:   cfg.PresignExpiration,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.expires <= 0 {
		s.expires = 15 * time.Minute
	}
	return s, nil
}

// normalizeEndpoint adds a scheme when the endpoint has none; empty means a
// local MinIO or RustFS
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	switch {
	case endpoint == "":
		endpoint = "http://localhost:9000"
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
	case useSSL:
		endpoint = "https://" + endpoint
	default:
		endpoint = "http://" + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3DocumentStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &s.bucket})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("storage bucket ready", zap.String("bucket", s.bucket))
	return nil
}

func (s *S3DocumentStorage) Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := infra.DocumentKey(req.JobID, req.FileName, s.now())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             &s.bucket,
		Key:                &key,
		Body:               bytes.NewReader(req.Data),
		ContentLength:      aws.Int64(int64(len(req.Data))),
		ContentType:        aws.String(cmp.Or(req.ContentType, "application/octet-stream")),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", req.FileName)),
	})
	if err != nil {
		return nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to upload document", err)
	}

	s.logger.Debug("document uploaded", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("size", len(req.Data)))
	return &infra.StoreResult{Key: key, URL: s.objectURL(key), Size: int64(len(req.Data))}, nil
}

func (s *S3DocumentStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "storage key is required", nil)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	switch {
	case err == nil:
		return out.Body, nil
	case isNotFound(err):
		return nil, infra.NewRenderError(infra.ErrCodeNotFound, "document not found", err)
	}
	return nil, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to download document", err)
}

func (s *S3DocumentStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return infra.NewRenderError(infra.ErrCodeStorageFailed, "storage key is required", nil)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil && !isNotFound(err) {
		return infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to delete document", err)
	}
	return nil
}

// CleanupOlderThan deletes objects last modified before now minus age, one
// listing page per DeleteObjects call
func (s *S3DocumentStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deleted := 0

	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{Bucket: &s.bucket})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return deleted, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to list documents", err)
		}
		expired := expiredObjects(page.Contents, cutoff)
		if len(expired) == 0 {
			continue
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: &s.bucket,
			Delete: &types.Delete{Objects: expired, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to delete documents", err)
		}
		deleted += len(expired) - len(out.Errors)
		for _, e := range out.Errors {
			s.logger.Warn("expired document not deleted",
				zap.String("key", aws.ToString(e.Key)),
				zap.String("error", aws.ToString(e.Message)))
		}
	}

	s.logger.Info("document cleanup finished", zap.String("bucket", s.bucket), zap.Int("deleted", deleted))
	return deleted, nil
}

func expiredObjects(objects []types.Object, cutoff time.Time) []types.ObjectIdentifier {
	var ids []types.ObjectIdentifier
	for _, obj := range objects {
		if obj.LastModified != nil && obj.LastModified.Before(cutoff) {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
	}
	return ids
}

// objectURL is the public URL under urlPrefix, or an s3:// URI without one
func (s *S3DocumentStorage) objectURL(key string) string {
	if s.urlPrefix == "" {
		return "s3://" + s.bucket + "/" + key
	}
	return s.urlPrefix + "/" + key
}

// PresignedURL signs a GET for key valid for the presign expiration
func (s *S3DocumentStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key},
		s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// isNotFound also matches services that only put the code in the message
func isNotFound(err error) bool {
	var (
		notFound *types.NotFound
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
	)
	if errors.As(err, &notFound) || errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey")
}
