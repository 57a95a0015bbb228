// Package osrm provides two-point driving directions against an OSRM-style
// routing endpoint.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

const defaultBaseURL = "https://router.project-osrm.org"

// Route is the resolved driving route between two points.
type Route struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// Client talks to one OSRM endpoint.
type Client struct {
	baseURL string
	httpc   *http.Client
	ua      string
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the routing endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// New creates an OSRM client with a 15s timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		ua:      "melbourne-properties/1.0 (housing market research)",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

// Route resolves the driving route from origin to destination. Any failure
// or malformed answer is an error; callers fall back to the straight-line
// distance.
func (c *Client) Route(ctx context.Context, oLat, oLon, dLat, dLon float64) (*Route, error) {
	// OSRM takes lon,lat pairs.
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, oLon, oLat, dLon, dLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, upstream.Wrap(upstream.Validation, "osrm: build request", err)
	}
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, upstream.Wrap(upstream.Unavailable, "osrm: request", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.Errorf(upstream.Unavailable, "osrm: route", "status %d", resp.StatusCode)
	}

	var parsed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, upstream.Wrap(upstream.Degraded, "osrm: route", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, upstream.Errorf(upstream.NotFound, "osrm: route", "no route (code %q)", parsed.Code)
	}

	first := parsed.Routes[0]
	return &Route{
		DistanceKm:  first.Distance / 1000,
		DurationMin: first.Duration / 60,
	}, nil
}
