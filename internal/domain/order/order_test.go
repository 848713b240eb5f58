package order

import (
	"errors"
	"testing"

	"github.com/cartoprint/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("abc123", "Paris", "France", "noir", 12000, "12x16", 300)
	require.NoError(t, err)
	o.PosterFilename = "paris_noir_20240101_120000.png"
	o.InvoiceFilename = "abc123.json"
	return o
}

func TestNew(t *testing.T) {
	t.Run("creates pending order", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, StatusPending, o.Status)
		assert.False(t, o.Paid)
		assert.False(t, o.CreatedAt.IsZero())
	})

	t.Run("trims whitespace", func(t *testing.T) {
		o, err := New("id", "  Paris ", " France ", "noir", 12000, "12x16", 300)
		require.NoError(t, err)
		assert.Equal(t, "Paris", o.City)
		assert.Equal(t, "France", o.Country)
	})

	t.Run("rejects missing city", func(t *testing.T) {
		_, err := New("id", "", "France", "noir", 12000, "12x16", 300)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("rejects non-positive distance", func(t *testing.T) {
		_, err := New("id", "Paris", "France", "noir", 0, "12x16", 300)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive dpi", func(t *testing.T) {
		_, err := New("id", "Paris", "France", "noir", 12000, "12x16", -1)
		assert.Error(t, err)
	})
}

func TestOpenCheckout(t *testing.T) {
	t.Run("moves pending order to awaiting_payment", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.OpenCheckout("cs_test_123"))
		assert.Equal(t, StatusAwaitingPayment, o.Status)
		assert.Equal(t, "cs_test_123", o.CheckoutSessionID)
	})

	t.Run("rejects empty session id", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Error(t, o.OpenCheckout(""))
	})

	t.Run("rejects double open", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.OpenCheckout("cs_test_123"))
		assert.ErrorIs(t, o.OpenCheckout("cs_test_456"), shared.ErrInvalidState)
	})
}

func TestMarkPaid(t *testing.T) {
	t.Run("first call transitions", func(t *testing.T) {
		o := newTestOrder(t)
		assert.True(t, o.MarkPaid())
		assert.True(t, o.Paid)
		assert.Equal(t, StatusPaid, o.Status)
	})

	t.Run("is idempotent", func(t *testing.T) {
		// Webhook and success page may both report the same payment.
		o := newTestOrder(t)
		require.True(t, o.MarkPaid())
		assert.False(t, o.MarkPaid())
		assert.Equal(t, StatusPaid, o.Status)
	})

	t.Run("does not regress a fulfilled order", func(t *testing.T) {
		o := newTestOrder(t)
		o.MarkPaid()
		require.NoError(t, o.MarkFulfilled())
		assert.False(t, o.MarkPaid())
		assert.Equal(t, StatusFulfilled, o.Status)
	})
}

func TestMarkFulfilled(t *testing.T) {
	t.Run("requires payment", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.MarkFulfilled(), shared.ErrPaymentRequired)
	})

	t.Run("succeeds after payment", func(t *testing.T) {
		o := newTestOrder(t)
		o.MarkPaid()
		require.NoError(t, o.MarkFulfilled())
		assert.Equal(t, StatusFulfilled, o.Status)
	})
}

func TestDownloadable(t *testing.T) {
	t.Run("refused until paid", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.Downloadable(o.PosterFilename), shared.ErrPaymentRequired)
	})

	t.Run("allows recorded artifacts once paid", func(t *testing.T) {
		o := newTestOrder(t)
		o.MarkPaid()
		assert.NoError(t, o.Downloadable(o.PosterFilename))
		assert.NoError(t, o.Downloadable(o.InvoiceFilename))
	})

	t.Run("unknown filename is not found even when paid", func(t *testing.T) {
		o := newTestOrder(t)
		o.MarkPaid()
		assert.ErrorIs(t, o.Downloadable("../../etc/passwd"), shared.ErrNotFound)
	})
}

func TestNewInvoice(t *testing.T) {
	o := newTestOrder(t)
	o.Email = "buyer@example.com"

	inv := NewInvoice(o, 2900, "usd")
	assert.Equal(t, "abc123", inv.InvoiceID)
	assert.Equal(t, o.CreatedAt, inv.CreatedAt)
	assert.Equal(t, int64(2900), inv.PriceCents)
	assert.Equal(t, "29.00", inv.Amount)
	assert.Equal(t, "usd", inv.Currency)
	assert.Equal(t, 12000, inv.DistanceMeters)
	assert.Equal(t, "buyer@example.com", inv.Email)
}
