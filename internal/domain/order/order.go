package order

import (
	"strings"
	"time"

	"github.com/cartoprint/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a poster order.
//
// pending          -> order created, preview rendered, no checkout opened yet
// awaiting_payment -> a gateway checkout session exists for this order
// paid             -> the gateway confirmed payment
// fulfilled        -> final poster rendered and delivery attempted
type Status string

const (
	StatusPending         Status = "pending"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusFulfilled       Status = "fulfilled"
)

// Coordinates holds the geocoded location captured at order creation.
// The final render reuses it instead of re-geocoding.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Order is the aggregate root for a single poster purchase.
// Each order is persisted as one JSON document keyed by ID.
type Order struct {
	ID                string       `json:"id"`
	CheckoutSessionID string       `json:"checkout_session_id,omitempty"`
	City              string       `json:"city"`
	Country           string       `json:"country"`
	Theme             string       `json:"theme"`
	Distance          int          `json:"distance"`
	Size              string       `json:"size"`
	DPI               int          `json:"dpi"`
	Email             string       `json:"email,omitempty"`
	PosterFilename    string       `json:"poster_filename"`
	PreviewFilename   string       `json:"preview_filename"`
	InvoiceFilename   string       `json:"invoice_filename"`
	Status            Status       `json:"status"`
	Paid              bool         `json:"paid"`
	CreatedAt         time.Time    `json:"created_at"`
	Coordinates       *Coordinates `json:"coordinates,omitempty"`
}

// New creates a pending order with required fields validated.
func New(id, city, country, theme string, distance int, size string, dpi int) (*Order, error) {
	city = strings.TrimSpace(city)
	country = strings.TrimSpace(country)
	if id == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID is required")
	}
	if city == "" || country == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "City and country are required")
	}
	if distance <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Map radius must be positive")
	}
	if dpi <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "DPI must be positive")
	}

	return &Order{
		ID:        id,
		City:      city,
		Country:   country,
		Theme:     theme,
		Distance:  distance,
		Size:      size,
		DPI:       dpi,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// OpenCheckout records the gateway checkout session opened for this order.
func (o *Order) OpenCheckout(sessionID string) error {
	if sessionID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Checkout session ID is required")
	}
	if o.Status != StatusPending {
		return shared.ErrInvalidState
	}
	o.CheckoutSessionID = sessionID
	o.Status = StatusAwaitingPayment
	return nil
}

// MarkPaid transitions the order to paid. It is idempotent: the payment
// webhook and the checkout success page may both report the same payment,
// and only the first transition takes effect.
//
// Returns true if this call performed the transition.
func (o *Order) MarkPaid() bool {
	if o.Paid {
		return false
	}
	o.Paid = true
	o.Status = StatusPaid
	return true
}

// MarkFulfilled records that the final poster was rendered and delivered.
func (o *Order) MarkFulfilled() error {
	if !o.Paid {
		return shared.ErrPaymentRequired
	}
	o.Status = StatusFulfilled
	return nil
}

// Downloadable reports whether the given filename may be served for this
// order. Only the exact artifact filenames recorded on the order qualify,
// and only once the order has been paid.
func (o *Order) Downloadable(filename string) error {
	if !o.Paid {
		return shared.ErrPaymentRequired
	}
	if filename != o.PosterFilename && filename != o.InvoiceFilename {
		return shared.ErrNotFound
	}
	return nil
}
