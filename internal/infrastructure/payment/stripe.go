// Package payment wraps the Stripe Checkout API for one-off poster sales.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// ErrInvalidSignature marks webhook payloads that fail signature
// verification so callers can reject them instead of acknowledging.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// Config holds the Stripe credentials and checkout parameters.
type Config struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// PriceID is the Stripe Price used for every poster sale
	PriceID string

	// WebhookSecret verifies webhook signatures; optional in development
	WebhookSecret string

	// PublicBaseURL is the externally reachable base URL the customer is
	// redirected back to after checkout
	PublicBaseURL string
}

// Validate validates the checkout configuration.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if c.PriceID == "" {
		return fmt.Errorf("stripe: price ID is required")
	}
	if c.PublicBaseURL == "" {
		return fmt.Errorf("stripe: public base URL is required")
	}
	return nil
}

// CheckoutClient creates and inspects Stripe Checkout sessions.
type CheckoutClient struct {
	config *Config
	logger *zap.Logger
}

// NewCheckoutClient creates a checkout client and installs the API key.
func NewCheckoutClient(config *Config, logger *zap.Logger) (*CheckoutClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stripe.Key = config.SecretKey

	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutClient{config: config, logger: logger}, nil
}

// CheckoutSession is the subset of a Stripe session the order flow needs.
type CheckoutSession struct {
	ID      string
	URL     string
	OrderID string
	Paid    bool
}

// CreateSession opens a Checkout session for a single poster. The order ID
// travels in the session metadata so the webhook and the success redirect
// can both find their way back to the order.
func (c *CheckoutClient) CreateSession(ctx context.Context, orderID, customerEmail string) (*CheckoutSession, error) {
	c.logger.Debug("Creating checkout session", zap.String("order_id", orderID))

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.config.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.config.PublicBaseURL + "/api/v1/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(c.config.PublicBaseURL + "/api/v1/checkout/cancel?order_id=" + orderID),
		ClientReferenceID: stripe.String(orderID),
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}
	params.AddMetadata("order_id", orderID)
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		c.logger.Error("Failed to create checkout session",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	c.logger.Info("Created checkout session",
		zap.String("order_id", orderID),
		zap.String("session_id", sess.ID))

	return sessionResult(sess), nil
}

// RetrieveSession fetches a session by ID, typically from the success
// redirect, and reports whether Stripe has collected payment.
func (c *CheckoutClient) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	c.logger.Debug("Retrieving checkout session", zap.String("session_id", sessionID))

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		c.logger.Error("Failed to retrieve checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session: %w", err)
	}

	return sessionResult(sess), nil
}

// PaymentEvent is a verified webhook notification.
type PaymentEvent struct {
	Type      string
	SessionID string
	OrderID   string
	Paid      bool
}

// VerifyEvent checks the webhook signature and extracts the checkout
// session details. Event types other than checkout.session.completed come
// back with only the type set so the caller can acknowledge and skip them.
func (c *CheckoutClient) VerifyEvent(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.config.WebhookSecret)
	if err != nil {
		c.logger.Error("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("stripe: %w: %v", ErrInvalidSignature, err)
	}

	result := &PaymentEvent{Type: string(event.Type)}
	if event.Type != "checkout.session.completed" {
		c.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
		return result, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("stripe: failed to decode checkout session event: %w", err)
	}

	result.SessionID = sess.ID
	result.OrderID = sess.Metadata["order_id"]
	if result.OrderID == "" {
		result.OrderID = sess.ClientReferenceID
	}
	result.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid

	c.logger.Info("Verified checkout webhook",
		zap.String("session_id", result.SessionID),
		zap.String("order_id", result.OrderID),
		zap.Bool("paid", result.Paid))

	return result, nil
}

func sessionResult(sess *stripe.CheckoutSession) *CheckoutSession {
	orderID := sess.Metadata["order_id"]
	if orderID == "" {
		orderID = sess.ClientReferenceID
	}
	return &CheckoutSession{
		ID:      sess.ID,
		URL:     sess.URL,
		OrderID: orderID,
		Paid:    sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
}
