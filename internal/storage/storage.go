package storage

import (
	"context"
	"errors"
	"io"

	"github.com/teashop/apiserver/config"
)

// ObjectStorage defines the object operations shared across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an object to the configured bucket.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// NewBackend constructs the object-storage backend selected by config.
// A "none" backend yields (nil, nil); report export is then unavailable.
func NewBackend(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMinio:
		return NewMinioClient(cfg.Minio)
	case config.BackendGCS:
		return NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, errors.New("unknown storage backend: " + cfg.Backend)
	}
}
