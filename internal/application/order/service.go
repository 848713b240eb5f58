// Package order implements the poster purchase workflow.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cartoprint/backend/internal/domain/order"
	"github.com/cartoprint/backend/internal/domain/poster"
	"github.com/cartoprint/backend/internal/domain/shared"
	"github.com/cartoprint/backend/internal/infrastructure/mail"
	"github.com/cartoprint/backend/internal/infrastructure/payment"
	"github.com/cartoprint/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PosterRenderer produces the artwork for an order.
type PosterRenderer interface {
	Geocode(ctx context.Context, city, country string) (order.Coordinates, error)
	RenderPreview(ctx context.Context, o *order.Order) ([]byte, error)
	RenderFinal(ctx context.Context, o *order.Order) ([]byte, error)
}

// CheckoutGateway opens and inspects payment sessions. A nil gateway
// means payments are disabled and orders are fulfilled immediately.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, orderID, customerEmail string) (*payment.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
	VerifyEvent(payload []byte, signature string) (*payment.PaymentEvent, error)
}

// Mailer sends the order confirmation. A nil mailer disables mail.
type Mailer interface {
	SendOrderReady(ctx context.Context, om mail.OrderMail) error
}

// Config holds the order workflow settings.
type Config struct {
	PriceCents    int64
	Currency      string
	PublicBaseURL string
}

// Service coordinates order creation, payment and fulfillment.
type Service struct {
	repo      order.Repository
	invoices  order.InvoiceRepository
	artifacts storage.ArtifactStore
	renderer  PosterRenderer
	checkout  CheckoutGateway
	mailer    Mailer
	config    Config
	logger    *zap.Logger
}

// NewService creates the order service. checkout and mailer may be nil.
func NewService(
	repo order.Repository,
	invoices order.InvoiceRepository,
	artifacts storage.ArtifactStore,
	renderer PosterRenderer,
	checkout CheckoutGateway,
	mailer Mailer,
	config Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		invoices:  invoices,
		artifacts: artifacts,
		renderer:  renderer,
		checkout:  checkout,
		mailer:    mailer,
		config:    config,
		logger:    logger,
	}
}

// CreateRequest carries the order form fields. Zero values fall back to
// the catalog defaults.
type CreateRequest struct {
	City     string
	Country  string
	Theme    string
	Distance int
	Size     string
	DPI      int
	Email    string
}

// CreateResult is the outcome of a successful order creation.
type CreateResult struct {
	Order *order.Order

	// CheckoutURL is where the customer completes payment. Empty when
	// payments are disabled; the order is then already fulfilled.
	CheckoutURL string

	// EmailSent reports whether the order mail went out. Always false
	// while payment is still pending.
	EmailSent bool
}

func (r *CreateRequest) applyDefaults() {
	if r.Theme == "" {
		r.Theme = poster.DefaultTheme
	}
	if r.Size == "" {
		r.Size = poster.DefaultSize
	}
	if r.Distance == 0 {
		r.Distance = poster.DefaultDistance
	}
	if r.DPI == 0 {
		r.DPI = poster.DefaultDPI
	}
}

func (r *CreateRequest) validate() error {
	if _, ok := poster.SizeByName(r.Size); !ok {
		return shared.NewDomainError("INVALID_INPUT", "Unknown paper size")
	}
	if r.DPI < poster.MinDPI || r.DPI > poster.MaxDPI {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("DPI must be between %d and %d", poster.MinDPI, poster.MaxDPI))
	}
	if r.Distance < poster.MinDistance || r.Distance > poster.MaxDistance {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Map radius must be between %d and %d meters", poster.MinDistance, poster.MaxDistance))
	}
	return nil
}

// Create geocodes the city, renders the watermarked preview, writes the
// invoice snapshot and either opens a checkout session or, with payments
// disabled, fulfills the order on the spot.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	req.applyDefaults()
	if err := req.validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	o, err := order.New(id, req.City, req.Country, req.Theme, req.Distance, req.Size, req.DPI)
	if err != nil {
		return nil, err
	}
	o.Email = req.Email
	o.PosterFilename = "poster_" + id + ".png"
	o.PreviewFilename = "preview_" + id + ".png"
	o.InvoiceFilename = "invoice_" + id + ".json"

	coords, err := s.renderer.Geocode(ctx, o.City, o.Country)
	if err != nil {
		return nil, err
	}
	o.Coordinates = &coords

	preview, err := s.renderer.RenderPreview(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	if err := s.artifacts.Put(ctx, o.ID, o.PreviewFilename, preview, "image/png"); err != nil {
		return nil, err
	}

	// The invoice snapshot is immutable from here on.
	inv := order.NewInvoice(o, s.config.PriceCents, s.config.Currency)
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	invData, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal invoice: %w", err)
	}
	if err := s.artifacts.Put(ctx, o.ID, o.InvoiceFilename, invData, "application/json"); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Created order",
		zap.String("order_id", o.ID),
		zap.String("city", o.City),
		zap.String("theme", o.Theme),
		zap.String("size", o.Size))

	if s.checkout == nil {
		o.MarkPaid()
		if err := s.repo.Save(ctx, o); err != nil {
			return nil, err
		}
		sent, err := s.fulfill(ctx, o)
		if err != nil {
			return nil, err
		}
		return &CreateResult{Order: o, EmailSent: sent}, nil
	}

	sess, err := s.checkout.CreateSession(ctx, o.ID, o.Email)
	if err != nil {
		return nil, err
	}
	if err := o.OpenCheckout(sess.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	return &CreateResult{Order: o, CheckoutURL: sess.URL}, nil
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, id string) (*order.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// Preview returns the watermarked preview PNG. Previews are public: the
// watermark is the protection, not the order state.
func (s *Service) Preview(ctx context.Context, id string) ([]byte, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.artifacts.Get(ctx, o.ID, o.PreviewFilename)
}

// Download serves a paid order's artifact. Unpaid orders get
// shared.ErrPaymentRequired; filenames not recorded on the order get
// shared.ErrNotFound.
func (s *Service) Download(ctx context.Context, id, filename string) ([]byte, string, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if err := o.Downloadable(filename); err != nil {
		return nil, "", err
	}

	data, err := s.artifacts.Get(ctx, o.ID, filename)
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	switch filename {
	case o.PosterFilename:
		contentType = "image/png"
	case o.InvoiceFilename:
		contentType = "application/json"
	}
	return data, contentType, nil
}

// HandleCheckoutSuccess processes the customer's return from the payment
// page. It verifies with the gateway that the session was actually paid
// before marking the order. The bool reports whether the order mail went
// out during this call.
func (s *Service) HandleCheckoutSuccess(ctx context.Context, sessionID string) (*order.Order, bool, error) {
	if s.checkout == nil {
		return nil, false, shared.NewDomainError("INVALID_STATE", "Payments are not enabled")
	}

	sess, err := s.checkout.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if !sess.Paid {
		return nil, false, shared.ErrPaymentRequired
	}

	o, err := s.findBySession(ctx, sess)
	if err != nil {
		return nil, false, err
	}
	sent, err := s.settle(ctx, o)
	if err != nil {
		return nil, false, err
	}
	return o, sent, nil
}

// IsSignatureError reports whether a webhook error came from signature
// verification rather than event processing.
func IsSignatureError(err error) bool {
	return errors.Is(err, payment.ErrInvalidSignature)
}

// HandleWebhook processes a payment gateway webhook. Unknown event types
// are acknowledged and skipped.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.checkout == nil {
		return shared.NewDomainError("INVALID_STATE", "Payments are not enabled")
	}

	event, err := s.checkout.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}
	if event.SessionID == "" || !event.Paid {
		return nil
	}

	var o *order.Order
	if event.OrderID != "" {
		o, err = s.repo.FindByID(ctx, event.OrderID)
	} else {
		o, err = s.repo.FindByCheckoutSession(ctx, event.SessionID)
	}
	if err != nil {
		return err
	}
	_, err = s.settle(ctx, o)
	return err
}

func (s *Service) findBySession(ctx context.Context, sess *payment.CheckoutSession) (*order.Order, error) {
	if sess.OrderID != "" {
		return s.repo.FindByID(ctx, sess.OrderID)
	}
	return s.repo.FindByCheckoutSession(ctx, sess.ID)
}

// settle marks the order paid and fulfills it. The webhook and the
// success redirect race on this; the first caller does the work, the
// second sees a fulfilled order and skips. A paid order whose earlier
// fulfillment attempt failed is retried here instead of skipped.
func (s *Service) settle(ctx context.Context, o *order.Order) (bool, error) {
	if o.MarkPaid() {
		// Persist the payment before rendering: a fulfillment failure
		// must not lose an acknowledged payment.
		if err := s.repo.Save(ctx, o); err != nil {
			return false, err
		}
	} else {
		if o.Status == order.StatusFulfilled {
			s.logger.Debug("Order already fulfilled, skipping",
				zap.String("order_id", o.ID))
			return false, nil
		}
		s.logger.Info("Retrying fulfillment for paid order",
			zap.String("order_id", o.ID))
	}
	return s.fulfill(ctx, o)
}

// fulfill renders the final poster, stores it and attempts delivery.
// Callers persist the paid state first, so a failure here leaves a paid,
// unfulfilled order that the next settle call picks up again. Mail
// failure does not fail the order; the bool reports whether the mail
// actually went out.
func (s *Service) fulfill(ctx context.Context, o *order.Order) (bool, error) {
	final, err := s.renderer.RenderFinal(ctx, o)
	if err != nil {
		return false, fmt.Errorf("render poster: %w", err)
	}
	if err := s.artifacts.Put(ctx, o.ID, o.PosterFilename, final, "image/png"); err != nil {
		return false, err
	}

	if err := o.MarkFulfilled(); err != nil {
		return false, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return false, err
	}

	s.logger.Info("Fulfilled order", zap.String("order_id", o.ID))

	return s.sendMail(ctx, o), nil
}

func (s *Service) sendMail(ctx context.Context, o *order.Order) bool {
	if s.mailer == nil || o.Email == "" {
		return false
	}

	om := mail.OrderMail{
		To:      o.Email,
		OrderID: o.ID,
		City:    o.City,
		Country: o.Country,
	}
	if s.config.PublicBaseURL != "" {
		om.DownloadURL = fmt.Sprintf("%s/api/v1/orders/%s/download/%s",
			s.config.PublicBaseURL, o.ID, o.PosterFilename)
	}
	if pather, ok := s.artifacts.(storage.LocalPather); ok {
		om.PosterPath = pather.LocalPath(o.ID, o.PosterFilename)
		om.InvoicePath = pather.LocalPath(o.ID, o.InvoiceFilename)
	}
	if err := s.mailer.SendOrderReady(ctx, om); err != nil {
		s.logger.Warn("Order mail failed",
			zap.String("order_id", o.ID),
			zap.Error(err))
		return false
	}
	return true
}
