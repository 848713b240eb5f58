package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/cartoprint/backend/internal/domain/order"
	"github.com/cartoprint/backend/internal/domain/poster"
	"github.com/cartoprint/backend/internal/domain/shared"
	"github.com/cartoprint/backend/internal/infrastructure/geocode"
	"github.com/cartoprint/backend/internal/infrastructure/osm"
	"github.com/cartoprint/backend/internal/infrastructure/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGeocoder struct {
	result geocode.Result
	err    error
}

func (s *stubGeocoder) Lookup(ctx context.Context, city, country string) (geocode.Result, error) {
	return s.result, s.err
}

type stubFetcher struct {
	data *osm.MapData
	err  error
}

func (s *stubFetcher) FetchLayers(ctx context.Context, center osm.Point, dist int) (*osm.MapData, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.data != nil {
		return s.data, nil
	}
	return &osm.MapData{
		Bounds: osm.BBoxAround(center, dist),
		Roads: []osm.Way{
			{Highway: "primary", Points: []osm.Point{
				{Lat: center.Lat - 0.01, Lon: center.Lon - 0.01},
				{Lat: center.Lat + 0.01, Lon: center.Lon + 0.01},
			}},
		},
	}, nil
}

type stubThemes struct{}

func (stubThemes) Load(name string) poster.Theme { return poster.FallbackTheme() }

func testOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.New("ord-1", "Paris", "France", "feature_based", 29000, "8x10", 72)
	require.NoError(t, err)
	o.Coordinates = &order.Coordinates{Lat: 48.8566, Lon: 2.3522}
	return o
}

func newTestService(geocoder Geocoder, fetcher MapFetcher) *Service {
	return NewService(geocoder, fetcher, stubThemes{},
		render.NewRenderer("", zap.NewNop()), 200, zap.NewNop())
}

func TestGeocode(t *testing.T) {
	svc := newTestService(&stubGeocoder{result: geocode.Result{Lat: 48.85, Lon: 2.35}}, &stubFetcher{})

	coords, err := svc.Geocode(context.Background(), "Paris", "France")

	require.NoError(t, err)
	assert.InDelta(t, 48.85, coords.Lat, 1e-9)
	assert.InDelta(t, 2.35, coords.Lon, 1e-9)
}

func TestGeocode_CityNotFound(t *testing.T) {
	svc := newTestService(&stubGeocoder{err: shared.ErrCityNotFound}, &stubFetcher{})

	_, err := svc.Geocode(context.Background(), "Atlantis", "Nowhere")

	assert.ErrorIs(t, err, shared.ErrCityNotFound)
}

func TestRenderFinal(t *testing.T) {
	svc := newTestService(&stubGeocoder{}, &stubFetcher{})

	data, err := svc.RenderFinal(context.Background(), testOrder(t))

	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	// 8x10 inches at 72 DPI
	assert.Equal(t, 576, img.Bounds().Dx())
	assert.Equal(t, 720, img.Bounds().Dy())
}

func TestRenderPreview_Downscaled(t *testing.T) {
	svc := newTestService(&stubGeocoder{}, &stubFetcher{})

	data, err := svc.RenderPreview(context.Background(), testOrder(t))

	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())
}

func TestRender_NoCoordinates(t *testing.T) {
	svc := newTestService(&stubGeocoder{}, &stubFetcher{})
	o := testOrder(t)
	o.Coordinates = nil

	_, err := svc.RenderFinal(context.Background(), o)

	assert.Error(t, err)
}

func TestRender_UnknownSize(t *testing.T) {
	svc := newTestService(&stubGeocoder{}, &stubFetcher{})
	o := testOrder(t)
	o.Size = "a4"

	_, err := svc.RenderFinal(context.Background(), o)

	assert.Error(t, err)
}

func TestRender_FetchError(t *testing.T) {
	svc := newTestService(&stubGeocoder{}, &stubFetcher{err: assert.AnError})

	_, err := svc.RenderFinal(context.Background(), testOrder(t))

	assert.ErrorIs(t, err, assert.AnError)
}
