// Package storage persists order artifacts (poster, preview, invoice) on
// the local filesystem or in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"strings"

	infraconfig "github.com/cartoprint/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ArtifactStore reads and writes the files produced for an order. Keys are
// an order ID plus a bare filename; implementations lay them out as
// <orderID>/<filename>.
type ArtifactStore interface {
	Put(ctx context.Context, orderID, filename string, data []byte, contentType string) error
	Get(ctx context.Context, orderID, filename string) ([]byte, error)
	Exists(ctx context.Context, orderID, filename string) (bool, error)
}

// LocalPather is implemented by stores whose artifacts live on the local
// filesystem and can be attached to mail directly.
type LocalPather interface {
	LocalPath(orderID, filename string) string
}

// New builds the artifact store selected by the configuration.
func New(cfg *infraconfig.StorageConfig, logger *zap.Logger) (ArtifactStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, logger)
	case "s3":
		store, err := NewS3Store(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(context.Background()); err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

func validateKey(orderID, filename string) error {
	for _, part := range []string{orderID, filename} {
		if part == "" || strings.ContainsAny(part, "/\\") || strings.Contains(part, "..") {
			return fmt.Errorf("storage: invalid artifact key %q/%q", orderID, filename)
		}
	}
	return nil
}
