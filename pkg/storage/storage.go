// Package storage provides blob storage for uploaded files. It defines a
// System interface with a filesystem implementation for single-node
// deployments and an S3-compatible implementation backed by minio-go.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/worksheet-lab/pkg/lifecycle"
)

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrExists indicates Store was called with a key that is already present.
	ErrExists = errors.New("storage: key already exists")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is empty or attempts path traversal.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Object is an open stored blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// System defines blob storage operations.
type System interface {
	// Store saves data at key. It never overwrites: an existing key returns ErrExists.
	Store(ctx context.Context, key string, data []byte, contentType string) error

	// Open returns a reader for the blob at key, or ErrNotFound.
	Open(ctx context.Context, key string) (*Object, error)

	// Delete removes the blob at key. Missing keys return nil.
	Delete(ctx context.Context, key string) error

	// PublicURL resolves the externally reachable URL for key.
	PublicURL(key string) string

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the storage System selected by cfg.Driver.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Driver {
	case DriverFilesystem:
		return NewFilesystem(cfg, logger)
	case DriverS3:
		return NewS3(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
