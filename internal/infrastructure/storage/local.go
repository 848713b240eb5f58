package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cartoprint/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LocalStore keeps artifacts under root/<orderID>/<filename>.
type LocalStore struct {
	root   string
	logger *zap.Logger
}

var _ ArtifactStore = (*LocalStore)(nil)
var _ LocalPather = (*LocalStore)(nil)

// NewLocalStore creates a filesystem artifact store rooted at dir.
func NewLocalStore(dir string, logger *zap.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("storage: local directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{root: dir, logger: logger}, nil
}

func (s *LocalStore) Put(ctx context.Context, orderID, filename string, data []byte, contentType string) error {
	if err := validateKey(orderID, filename); err != nil {
		return err
	}
	dir := filepath.Join(s.root, orderID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: failed to create order directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("storage: failed to write artifact: %w", err)
	}

	s.logger.Debug("Stored artifact",
		zap.String("order_id", orderID),
		zap.String("filename", filename),
		zap.Int("bytes", len(data)))
	return nil
}

func (s *LocalStore) Get(ctx context.Context, orderID, filename string) ([]byte, error) {
	if err := validateKey(orderID, filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, orderID, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to read artifact: %w", err)
	}
	return data, nil
}

func (s *LocalStore) Exists(ctx context.Context, orderID, filename string) (bool, error) {
	if err := validateKey(orderID, filename); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(s.root, orderID, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: failed to stat artifact: %w", err)
	}
	return true, nil
}

// LocalPath returns the filesystem location of an artifact. The file may
// not exist yet.
func (s *LocalStore) LocalPath(orderID, filename string) string {
	return filepath.Join(s.root, orderID, filename)
}
