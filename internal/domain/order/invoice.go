package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a denormalized snapshot of the order taken at creation time.
// It is written exactly once and never updated, even if the order changes
// afterwards.
type Invoice struct {
	InvoiceID      string    `json:"invoice_id"`
	CreatedAt      time.Time `json:"created_at"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	Theme          string    `json:"theme"`
	DistanceMeters int       `json:"distance_meters"`
	Size           string    `json:"size"`
	DPI            int       `json:"dpi"`
	PriceCents     int64     `json:"price_cents"`
	Currency       string    `json:"currency"`
	Amount         string    `json:"amount"`
	Email          string    `json:"email"`
}

// NewInvoice builds the invoice snapshot for an order at the given price.
func NewInvoice(o *Order, priceCents int64, currency string) *Invoice {
	amount := decimal.NewFromInt(priceCents).Div(decimal.NewFromInt(100))
	return &Invoice{
		InvoiceID:      strings.TrimSuffix(o.InvoiceFilename, ".json"),
		CreatedAt:      o.CreatedAt,
		City:           o.City,
		Country:        o.Country,
		Theme:          o.Theme,
		DistanceMeters: o.Distance,
		Size:           o.Size,
		DPI:            o.DPI,
		PriceCents:     priceCents,
		Currency:       currency,
		Amount:         amount.StringFixed(2),
		Email:          o.Email,
	}
}

// InvoiceRepository defines persistence for invoice snapshots.
type InvoiceRepository interface {
	// Save writes the invoice document. Implementations must refuse to
	// overwrite an existing invoice: the snapshot is immutable.
	Save(ctx context.Context, inv *Invoice) error
}
