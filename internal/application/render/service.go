// Package render orchestrates the poster pipeline: geocode the city,
// fetch map geometry, draw the poster.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/cartoprint/backend/internal/domain/order"
	"github.com/cartoprint/backend/internal/domain/poster"
	"github.com/cartoprint/backend/internal/domain/shared"
	"github.com/cartoprint/backend/internal/infrastructure/geocode"
	"github.com/cartoprint/backend/internal/infrastructure/osm"
	"github.com/cartoprint/backend/internal/infrastructure/render"
	"go.uber.org/zap"
)

// Geocoder resolves a city and country to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, city, country string) (geocode.Result, error)
}

// MapFetcher loads street, water and park geometry around a point.
type MapFetcher interface {
	FetchLayers(ctx context.Context, center osm.Point, dist int) (*osm.MapData, error)
}

// ThemeLoader resolves theme names to color palettes.
type ThemeLoader interface {
	Load(name string) poster.Theme
}

// Service renders poster artwork for orders.
type Service struct {
	geocoder     Geocoder
	fetcher      MapFetcher
	themes       ThemeLoader
	renderer     *render.Renderer
	previewWidth int
	logger       *zap.Logger
}

// NewService creates a render service.
func NewService(
	geocoder Geocoder,
	fetcher MapFetcher,
	themes ThemeLoader,
	renderer *render.Renderer,
	previewWidth int,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		geocoder:     geocoder,
		fetcher:      fetcher,
		themes:       themes,
		renderer:     renderer,
		previewWidth: previewWidth,
		logger:       logger,
	}
}

// Geocode resolves the order's city to coordinates. An unresolvable city
// surfaces as shared.ErrCityNotFound.
func (s *Service) Geocode(ctx context.Context, city, country string) (order.Coordinates, error) {
	result, err := s.geocoder.Lookup(ctx, city, country)
	if err != nil {
		return order.Coordinates{}, err
	}
	return order.Coordinates{Lat: result.Lat, Lon: result.Lon}, nil
}

// RenderPreview produces the watermarked, downscaled preview PNG.
func (s *Service) RenderPreview(ctx context.Context, o *order.Order) ([]byte, error) {
	img, err := s.renderImage(ctx, o, true)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, render.Preview(img, s.previewWidth)); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderFinal produces the full-resolution print PNG without watermark.
func (s *Service) RenderFinal(ctx context.Context, o *order.Order) ([]byte, error) {
	img, err := s.renderImage(ctx, o, false)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return nil, fmt.Errorf("encode poster: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) renderImage(ctx context.Context, o *order.Order, watermark bool) (image.Image, error) {
	if o.Coordinates == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Order has no coordinates")
	}

	size, ok := poster.SizeByName(o.Size)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown paper size")
	}

	center := osm.Point{Lat: o.Coordinates.Lat, Lon: o.Coordinates.Lon}
	data, err := s.fetcher.FetchLayers(ctx, center, o.Distance)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rendering poster",
		zap.String("order_id", o.ID),
		zap.String("city", o.City),
		zap.Int("roads", len(data.Roads)),
		zap.Bool("watermark", watermark))

	return s.renderer.Render(data, s.themes.Load(o.Theme), render.Options{
		City:      o.City,
		Country:   o.Country,
		Center:    center,
		Size:      size,
		DPI:       o.DPI,
		Watermark: watermark,
	})
}
