// Package persistence implements the file-per-order JSON document store.
// Orders and invoices are each a single JSON file keyed by ID; there is
// one writer per order and no locking.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartoprint/backend/internal/domain/order"
	"github.com/cartoprint/backend/internal/domain/shared"
)

const (
	ordersSubdir   = "orders"
	invoicesSubdir = "invoices"
)

// FileOrderStore persists orders as one JSON document each under
// <dataDir>/orders/<id>.json.
type FileOrderStore struct {
	dir string
}

var _ order.Repository = (*FileOrderStore)(nil)

// NewFileOrderStore creates the orders directory if needed.
func NewFileOrderStore(dataDir string) (*FileOrderStore, error) {
	dir := filepath.Join(dataDir, ordersSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create orders dir: %w", err)
	}
	return &FileOrderStore{dir: dir}, nil
}

// Save writes the full order document, creating or replacing it.
func (s *FileOrderStore) Save(_ context.Context, o *order.Order) error {
	if err := validateDocumentID(o.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", o.ID, err)
	}
	if err := os.WriteFile(s.path(o.ID), data, 0o644); err != nil {
		return fmt.Errorf("write order %s: %w", o.ID, err)
	}
	return nil
}

// FindByID loads an order document by ID.
func (s *FileOrderStore) FindByID(_ context.Context, id string) (*order.Order, error) {
	if err := validateDocumentID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("read order %s: %w", id, err)
	}
	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	return &o, nil
}

// FindByCheckoutSession scans the order documents for a matching gateway
// session ID. The store is small (one file per order) so a linear scan
// is fine.
func (s *FileOrderStore) FindByCheckoutSession(ctx context.Context, sessionID string) (*order.Order, error) {
	if sessionID == "" {
		return nil, shared.ErrInvalidInput
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		o, err := s.FindByID(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		if o.CheckoutSessionID == sessionID {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

// Ping verifies the store directory is writable, for health checks.
func (s *FileOrderStore) Ping() error {
	f, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (s *FileOrderStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// validateDocumentID rejects IDs that could escape the store directory.
func validateDocumentID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return shared.ErrInvalidInput
	}
	return nil
}
