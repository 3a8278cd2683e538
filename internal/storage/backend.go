package storage

import (
	"context"
	"fmt"

	"github.com/rajbhoyar729/LokDarpan/internal/config"
)

// NewBackend builds the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Backend(ctx, cfg)
	case "minio":
		return NewMinioBackend(ctx, cfg)
	case "memory":
		return NewMemoryBackend(cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
