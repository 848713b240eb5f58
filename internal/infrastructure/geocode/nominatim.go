// Package geocode provides a Nominatim client for resolving city names
// to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cartoprint/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Result is a geocoded location.
type Result struct {
	Lat     float64
	Lon     float64
	Address string
}

// Config holds Nominatim client settings.
type Config struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
}

// Client geocodes "city, country" queries against a Nominatim endpoint.
// Results are cached in-process with no eviction, and upstream calls are
// spaced at least MinInterval apart per the service's usage policy.
type Client struct {
	baseURL     string
	userAgent   string
	minInterval time.Duration
	httpClient  *http.Client
	logger      *zap.Logger

	mu       sync.Mutex
	cache    map[string]Result
	lastCall time.Time
	sleep    func(time.Duration) // overridable in tests
}

// NewClient creates a Nominatim client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		minInterval: cfg.MinInterval,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
		cache:       make(map[string]Result),
		sleep:       time.Sleep,
	}
}

// nominatimPlace is the subset of the Nominatim search response we read.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup resolves city and country to coordinates. Cache hits skip the
// upstream call entirely.
func (c *Client) Lookup(ctx context.Context, city, country string) (Result, error) {
	key := strings.ToLower(strings.TrimSpace(city)) + ", " + strings.ToLower(strings.TrimSpace(country))

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		c.logger.Debug("Geocode cache hit", zap.String("query", key))
		return cached, nil
	}
	// Politeness delay: at least minInterval between upstream calls.
	if wait := c.minInterval - time.Since(c.lastCall); wait > 0 {
		c.sleep(wait)
	}
	c.lastCall = time.Now()
	c.mu.Unlock()

	result, err := c.search(ctx, city+", "+country)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.cache[key] = result
	c.mu.Unlock()

	c.logger.Info("Geocoded location",
		zap.String("query", key),
		zap.Float64("lat", result.Lat),
		zap.Float64("lon", result.Lon))
	return result, nil
}

func (c *Client) search(ctx context.Context, query string) (Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Result{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(places) == 0 {
		return Result{}, shared.ErrCityNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad longitude %q: %w", places[0].Lon, err)
	}

	return Result{Lat: lat, Lon: lon, Address: places[0].DisplayName}, nil
}

// CacheSize reports the number of cached lookups.
func (c *Client) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
