package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cartoprint/backend/internal/domain/poster"
	"github.com/cartoprint/backend/internal/infrastructure/render"
	"github.com/cartoprint/backend/internal/interfaces/http/dto"
)

// PosterHandler serves the order form options: sizes, themes and pricing
type PosterHandler struct {
	BaseHandler
	themes          *render.ThemeStore
	priceCents      int64
	currency        string
	paymentsEnabled bool
}

// NewPosterHandler creates a new PosterHandler
func NewPosterHandler(themes *render.ThemeStore, priceCents int64, currency string, paymentsEnabled bool) *PosterHandler {
	return &PosterHandler{
		themes:          themes,
		priceCents:      priceCents,
		currency:        currency,
		paymentsEnabled: paymentsEnabled,
	}
}

// GetOptions returns the paper sizes, bounds, defaults and price
func (h *PosterHandler) GetOptions(c *gin.Context) {
	sizes := make([]dto.SizeOption, 0, len(poster.SizeCatalog))
	for _, s := range poster.SizeCatalog {
		sizes = append(sizes, dto.SizeOption{
			Name:     s.Name,
			WidthIn:  s.WidthIn,
			HeightIn: s.HeightIn,
		})
	}

	h.Success(c, dto.PosterOptionsResponse{
		Sizes:           sizes,
		DefaultSize:     poster.DefaultSize,
		DefaultTheme:    poster.DefaultTheme,
		DefaultDistance: poster.DefaultDistance,
		DefaultDPI:      poster.DefaultDPI,
		MinDPI:          poster.MinDPI,
		MaxDPI:          poster.MaxDPI,
		MinDistance:     poster.MinDistance,
		MaxDistance:     poster.MaxDistance,
		PriceCents:      h.priceCents,
		Currency:        h.currency,
		PaymentsEnabled: h.paymentsEnabled,
	})
}

// GetThemes returns the available poster themes
func (h *PosterHandler) GetThemes(c *gin.Context) {
	infos := h.themes.Describe()
	themes := make([]dto.ThemeOption, 0, len(infos))
	for _, info := range infos {
		themes = append(themes, dto.ThemeOption{
			Key:         info.Key,
			Name:        info.Name,
			Description: info.Description,
		})
	}

	h.Success(c, dto.ThemesResponse{Themes: themes})
}
