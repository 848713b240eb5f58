package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/cartoprint/backend/internal/application/order"
	"github.com/cartoprint/backend/internal/interfaces/http/dto"
)

// OrderHandler handles poster order API endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{
		orders: orders,
	}
}

// Create places a poster order. When payments are enabled the response
// carries the checkout URL; otherwise the order is fulfilled immediately.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orders.Create(c.Request.Context(), orderapp.CreateRequest{
		City:     req.City,
		Country:  req.Country,
		Theme:    req.Theme,
		Distance: req.Distance,
		Size:     req.Size,
		DPI:      req.DPI,
		Email:    req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.CreateOrderResponse{
		Order:       dto.ToOrderResponse(result.Order),
		CheckoutURL: result.CheckoutURL,
		EmailSent:   result.EmailSent,
	})
}

// GetByID returns the current state of an order
func (h *OrderHandler) GetByID(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ToOrderResponse(o))
}

// Preview serves the watermarked preview image for an order.
// Previews are public; the watermark is what protects the final artwork.
func (h *OrderHandler) Preview(c *gin.Context) {
	data, err := h.orders.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

// Download serves a paid order artifact by filename. Unpaid orders get a
// payment required error, filenames outside the order get a not found.
func (h *OrderHandler) Download(c *gin.Context) {
	filename := c.Param("filename")
	data, contentType, err := h.orders.Download(c.Request.Context(), c.Param("id"), filename)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
