package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/cartoprint/backend/internal/application/order"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// StripeWebhookHandler handles Stripe webhook endpoints
// These endpoints are called by Stripe and do not require authentication
type StripeWebhookHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(orders *orderapp.Service) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		orders: orders,
	}
}

// StripeWebhookResponse represents the response for Stripe webhook
type StripeWebhookResponse struct {
	Received bool   `json:"received"`
	Message  string `json:"message,omitempty"`
}

// HandleStripeWebhook verifies and processes a Stripe event. The raw body
// is required for signature verification, so no binding happens here.
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	if err := h.orders.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		// Signature failures get a 401 so misconfigured senders notice.
		// Anything else returns 200 to stop Stripe from retrying events
		// that will not succeed on retry.
		if orderapp.IsSignatureError(err) {
			c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
				Received: false,
				Message:  "Webhook signature verification failed",
			})
			return
		}

		c.JSON(http.StatusOK, StripeWebhookResponse{
			Received: true,
			Message:  "Webhook received but processing encountered an issue",
		})
		return
	}

	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received: true,
	})
}
