package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cartoprint/backend/internal/domain/order"
	"github.com/cartoprint/backend/internal/domain/shared"
)

// FileInvoiceStore persists invoice snapshots as one JSON document each
// under <dataDir>/invoices/<id>.json.
type FileInvoiceStore struct {
	dir string
}

var _ order.InvoiceRepository = (*FileInvoiceStore)(nil)

// NewFileInvoiceStore creates the invoices directory if needed.
func NewFileInvoiceStore(dataDir string) (*FileInvoiceStore, error) {
	dir := filepath.Join(dataDir, invoicesSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoices dir: %w", err)
	}
	return &FileInvoiceStore{dir: dir}, nil
}

// Save writes the invoice snapshot. Invoices are immutable: writing an
// ID that already exists is refused.
func (s *FileInvoiceStore) Save(_ context.Context, inv *order.Invoice) error {
	if err := validateDocumentID(inv.InvoiceID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal invoice %s: %w", inv.InvoiceID, err)
	}
	// O_EXCL enforces the write-once rule.
	f, err := os.OpenFile(s.Path(inv.InvoiceID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("create invoice %s: %w", inv.InvoiceID, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write invoice %s: %w", inv.InvoiceID, err)
	}
	return nil
}

// Path returns the filesystem path of an invoice document.
func (s *FileInvoiceStore) Path(invoiceID string) string {
	return filepath.Join(s.dir, invoiceID+".json")
}
