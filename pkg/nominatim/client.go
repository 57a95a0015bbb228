// Package nominatim provides address geocoding against a Nominatim-style
// search endpoint. No API key is required; the service's usage policy is
// honored by routing every call through a single minimum-delay gate.
package nominatim

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/fetch"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

const (
	defaultBaseURL     = "https://nominatim.openstreetmap.org"
	defaultCountryCode = "au"
	defaultMinDelay    = 1100 * time.Millisecond
)

// Point is a resolved location.
type Point struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Client geocodes free-text queries, first result only, country-restricted.
type Client struct {
	baseURL     string
	countryCode string
	fetcher     *fetch.Fetcher
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the search endpoint, mostly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCountryCode restricts results to a country (ISO 3166-1 alpha-2).
func WithCountryCode(code string) Option {
	return func(c *Client) { c.countryCode = code }
}

// WithFetcher substitutes the HTTP fetcher. The fetcher's gate is the global
// rate gate for every geocode call made through this client.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

// New creates a geocoding client. By default calls are spaced at least 1.1s
// apart, which keeps a sequential batch under 1 req/s.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		countryCode: defaultCountryCode,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetch.New(fetch.WithMinDelay(defaultMinDelay))
	}
	return c
}

// searchResult is one entry of the Nominatim JSON response. Coordinates come
// back as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search geocodes a free-text query. Zero matches is a classified NotFound,
// not an error; a 2xx answer that is not JSON (a challenge or error page) is
// classified Degraded.
func (c *Client) Search(ctx context.Context, query string) (*Point, error) {
	if query == "" {
		return nil, upstream.Errorf(upstream.Validation, "nominatim: search", "empty query")
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	if c.countryCode != "" {
		params.Set("countrycodes", c.countryCode)
	}

	resp, err := c.fetcher.Get(ctx, c.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var results []searchResult
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return nil, upstream.Wrap(upstream.Degraded, "nominatim: search", err)
	}
	if len(results) == 0 {
		return nil, upstream.Errorf(upstream.NotFound, "nominatim: search", "zero results for %q", query)
	}

	first := results[0]
	lat, latErr := strconv.ParseFloat(first.Lat, 64)
	lon, lonErr := strconv.ParseFloat(first.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, upstream.Errorf(upstream.Degraded, "nominatim: search",
			"unparsable coordinates %q,%q", first.Lat, first.Lon)
	}

	zap.L().Debug("nominatim: resolved",
		zap.String("query", query),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
	)

	return &Point{Lat: lat, Lon: lon, DisplayName: first.DisplayName}, nil
}
