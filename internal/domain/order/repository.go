package order

import "context"

// Repository defines persistence operations for orders.
// The production implementation is a file-per-order JSON store.
type Repository interface {
	// Save writes the full order document, creating or replacing it.
	Save(ctx context.Context, o *Order) error
	// FindByID loads an order by its ID. Returns shared.ErrNotFound
	// (wrapped in a DomainError) when no document exists.
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindByCheckoutSession loads an order by its gateway session ID.
	FindByCheckoutSession(ctx context.Context, sessionID string) (*Order, error)
}
