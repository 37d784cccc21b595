// Package storage persists final user-facing artifacts, either on the
// local filesystem or in a MinIO bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"uniaudio/internal/config"
)

// Store writes one finished artifact and returns where it can be fetched
// from: a filesystem path for the local backend, a presigned URL for
// object storage.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// New builds the store selected by the configuration.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case "local":
		return NewLocal(cfg.Storage.LocalDir), nil
	case "minio":
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
