package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/worksheet-lab/pkg/lifecycle"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type s3Store struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string
	logger    *slog.Logger
}

// NewS3 creates a storage system backed by an S3-compatible bucket.
// When public_url is unset, links are built from the endpoint and bucket.
func NewS3(cfg *Config, logger *slog.Logger) (System, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: cfg.S3.UseSSL,
		Region: cfg.S3.Region,
	}
	if cfg.S3.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(cfg.S3.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + cfg.S3.Bucket
	}

	return &s3Store{
		client:    client,
		bucket:    cfg.S3.Bucket,
		region:    cfg.S3.Region,
		publicURL: publicURL,
		logger:    logger.With("system", "storage", "driver", DriverS3),
	}, nil
}

func (s *s3Store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage system", "bucket", s.bucket)

	lc.OnStartup(func() {
		ctx := lc.Context()
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.logger.Error("bucket check failed", "error", err)
			return
		}
		if exists {
			s.logger.Info("bucket ready")
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			s.logger.Error("bucket creation failed", "error", err)
			return
		}
		s.logger.Info("bucket created")
	})

	return nil
}

// Store writes with If-None-Match: * so the bucket rejects a key that already exists.
func (s *s3Store) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrInvalidKey
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	opts.SetMatchETagExcept("*")

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("%w: %s", ErrExists, key)
		}
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (s *s3Store) Open(ctx context.Context, key string) (*Object, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}

	return &Object{
		Body:        obj,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// Delete is idempotent; S3 reports success for missing keys.
func (s *s3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *s3Store) PublicURL(key string) string {
	return joinURL(s.publicURL, key)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}

func isPreconditionFailed(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusPreconditionFailed || resp.Code == "PreconditionFailed"
}
