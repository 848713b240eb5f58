package handler

import (
	"github.com/gin-gonic/gin"

	orderapp "github.com/cartoprint/backend/internal/application/order"
	"github.com/cartoprint/backend/internal/interfaces/http/dto"
)

// CheckoutHandler handles the gateway redirect callbacks after checkout.
// These are browser-facing GET endpoints the gateway sends the customer to.
type CheckoutHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(orders *orderapp.Service) *CheckoutHandler {
	return &CheckoutHandler{
		orders: orders,
	}
}

// Complete settles the order for a completed checkout session. The webhook
// may have already done so; settlement is idempotent either way.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.BadRequest(c, "session_id query parameter is required")
		return
	}

	o, sent, err := h.orders.HandleCheckoutSuccess(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.CheckoutResultResponse{
		Order:     dto.ToOrderResponse(o),
		EmailSent: sent,
	})
}

// Cancel reports the order state after an abandoned checkout. The order
// stays in awaiting_payment so the customer can retry from the same session.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		h.BadRequest(c, "order_id query parameter is required")
		return
	}

	o, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.CheckoutResultResponse{Order: dto.ToOrderResponse(o)})
}
