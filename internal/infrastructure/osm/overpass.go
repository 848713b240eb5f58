package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds Overpass client settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client queries the Overpass API for map geometry.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an Overpass client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// overpassResponse mirrors the Overpass JSON output for `out geom`.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassCoord   `json:"geometry"`
}

type overpassCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchLayers downloads the street network, water features and parks for
// the area concurrently. Water and park failures are tolerated: the
// poster degrades to roads-only. A street network failure aborts.
func (c *Client) FetchLayers(ctx context.Context, center Point, dist int) (*MapData, error) {
	bounds := BBoxAround(center, dist)
	data := &MapData{Bounds: bounds}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roads, err := c.FetchStreets(gctx, bounds)
		if err != nil {
			return fmt.Errorf("street network: %w", err)
		}
		data.Roads = roads
		return nil
	})
	g.Go(func() error {
		water, err := c.FetchWater(gctx, bounds)
		if err != nil {
			c.logger.Warn("Water layer fetch failed, continuing without it", zap.Error(err))
			return nil
		}
		data.Water = water
		return nil
	})
	g.Go(func() error {
		parks, err := c.FetchParks(gctx, bounds)
		if err != nil {
			c.logger.Warn("Park layer fetch failed, continuing without it", zap.Error(err))
			return nil
		}
		data.Parks = parks
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("Map layers downloaded",
		zap.Int("roads", len(data.Roads)),
		zap.Int("water", len(data.Water)),
		zap.Int("parks", len(data.Parks)))
	return data, nil
}

// FetchStreets downloads all highway ways in the bounding box.
func (c *Client) FetchStreets(ctx context.Context, b BBox) ([]Way, error) {
	query := fmt.Sprintf(`[out:json][timeout:90];way["highway"](%s);out geom;`, bboxClause(b))
	resp, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}

	ways := make([]Way, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}
		ways = append(ways, Way{
			Highway: el.Tags["highway"],
			Points:  toPoints(el.Geometry),
		})
	}
	return ways, nil
}

// FetchWater downloads water polygons (natural=water, waterway=riverbank).
func (c *Client) FetchWater(ctx context.Context, b BBox) ([]Polygon, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:90];(way["natural"="water"](%[1]s);way["waterway"="riverbank"](%[1]s););out geom;`,
		bboxClause(b))
	return c.fetchPolygons(ctx, query)
}

// FetchParks downloads park polygons (leisure=park, landuse=grass).
func (c *Client) FetchParks(ctx context.Context, b BBox) ([]Polygon, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:90];(way["leisure"="park"](%[1]s);way["landuse"="grass"](%[1]s););out geom;`,
		bboxClause(b))
	return c.fetchPolygons(ctx, query)
}

func (c *Client) fetchPolygons(ctx context.Context, query string) ([]Polygon, error) {
	resp, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}
	polys := make([]Polygon, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) < 3 {
			continue
		}
		polys = append(polys, Polygon(toPoints(el.Geometry)))
	}
	return polys, nil
}

func (c *Client) run(ctx context.Context, query string) (*overpassResponse, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass: unexpected status %d", resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("overpass: decode response: %w", err)
	}
	return &decoded, nil
}

func bboxClause(b BBox) string {
	return fmt.Sprintf("%f,%f,%f,%f", b.South, b.West, b.North, b.East)
}

func toPoints(coords []overpassCoord) []Point {
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{Lat: c.Lat, Lon: c.Lon}
	}
	return points
}
