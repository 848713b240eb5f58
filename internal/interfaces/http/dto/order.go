package dto

import (
	"time"

	"github.com/cartoprint/backend/internal/domain/order"
)

// CreateOrderRequest is the payload for placing a poster order.
// Omitted optional fields fall back to the configured defaults.
type CreateOrderRequest struct {
	City     string `json:"city" binding:"required,min=1,max=100"`
	Country  string `json:"country" binding:"required,min=1,max=100"`
	Theme    string `json:"theme" binding:"omitempty,max=50"`
	Distance int    `json:"distance" binding:"omitempty"`
	Size     string `json:"size" binding:"omitempty,papersize"`
	DPI      int    `json:"dpi" binding:"omitempty"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// CoordinatesResponse mirrors the geocoded location on an order.
type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID              string               `json:"id"`
	Status          string               `json:"status"`
	Paid            bool                 `json:"paid"`
	City            string               `json:"city"`
	Country         string               `json:"country"`
	Theme           string               `json:"theme"`
	Distance        int                  `json:"distance"`
	Size            string               `json:"size"`
	DPI             int                  `json:"dpi"`
	PosterFilename  string               `json:"poster_filename"`
	InvoiceFilename string               `json:"invoice_filename"`
	CreatedAt       time.Time            `json:"created_at"`
	Coordinates     *CoordinatesResponse `json:"coordinates,omitempty"`
}

// CreateOrderResponse is returned from order creation. CheckoutURL is only
// present when payments are enabled and the customer still has to pay;
// EmailSent is then always false since the order mail goes out after
// payment.
type CreateOrderResponse struct {
	Order       OrderResponse `json:"order"`
	CheckoutURL string        `json:"checkout_url,omitempty"`
	EmailSent   bool          `json:"email_sent"`
}

// ToOrderResponse converts a domain order to its API representation.
// The customer email and checkout session ID are deliberately not exposed.
func ToOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		Status:          string(o.Status),
		Paid:            o.Paid,
		City:            o.City,
		Country:         o.Country,
		Theme:           o.Theme,
		Distance:        o.Distance,
		Size:            o.Size,
		DPI:             o.DPI,
		PosterFilename:  o.PosterFilename,
		InvoiceFilename: o.InvoiceFilename,
		CreatedAt:       o.CreatedAt,
	}
	if o.Coordinates != nil {
		resp.Coordinates = &CoordinatesResponse{
			Lat: o.Coordinates.Lat,
			Lon: o.Coordinates.Lon,
		}
	}
	return resp
}

// SizeOption is a selectable paper size.
type SizeOption struct {
	Name     string  `json:"name"`
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
}

// PosterOptionsResponse lists the order form options and defaults.
type PosterOptionsResponse struct {
	Sizes           []SizeOption `json:"sizes"`
	DefaultSize     string       `json:"default_size"`
	DefaultTheme    string       `json:"default_theme"`
	DefaultDistance int          `json:"default_distance"`
	DefaultDPI      int          `json:"default_dpi"`
	MinDPI          int          `json:"min_dpi"`
	MaxDPI          int          `json:"max_dpi"`
	MinDistance     int          `json:"min_distance"`
	MaxDistance     int          `json:"max_distance"`
	PriceCents      int64        `json:"price_cents"`
	Currency        string       `json:"currency"`
	PaymentsEnabled bool         `json:"payments_enabled"`
}

// ThemeOption describes an available poster theme.
type ThemeOption struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ThemesResponse lists the available poster themes.
type ThemesResponse struct {
	Themes []ThemeOption `json:"themes"`
}

// CheckoutResultResponse is returned from the checkout success and cancel
// callbacks. EmailSent only ever turns true on the success callback that
// performed the fulfillment.
type CheckoutResultResponse struct {
	Order     OrderResponse `json:"order"`
	EmailSent bool          `json:"email_sent"`
}
