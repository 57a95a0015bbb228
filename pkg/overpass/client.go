// Package overpass queries an Overpass-style endpoint for tagged point
// features inside a bounding radius. Only nodes are requested; the caller
// classifies them by tag.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Node is one tagged OSM node.
type Node struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Name returns the node's name tag, or a generic label.
func (n Node) Name() string {
	if name, ok := n.Tags["name"]; ok && name != "" {
		return name
	}
	return "(unnamed)"
}

// Client talks to one Overpass endpoint.
type Client struct {
	baseURL string
	httpc   *http.Client
	ua      string
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the interpreter endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithUserAgent overrides the User-Agent string.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.ua = ua }
}

// New creates an Overpass client with a 20s timeout; radius queries over
// dense areas are the slowest calls this module makes.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 20 * time.Second},
		ua:      "melbourne-properties/1.0 (housing market research)",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type overpassResponse struct {
	Elements []struct {
		Type string            `json:"type"`
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// NodesAround returns every public-transport-tagged node within radiusM
// meters of the point.
func (c *Client) NodesAround(ctx context.Context, lat, lon float64, radiusM int) ([]Node, error) {
	if radiusM <= 0 {
		return nil, upstream.Errorf(upstream.Validation, "overpass: nodes around", "radius must be positive, got %d", radiusM)
	}

	// Union of the tag families the stop classifier understands.
	query := fmt.Sprintf(`[out:json][timeout:15];
(
  node(around:%d,%f,%f)["railway"];
  node(around:%d,%f,%f)["public_transport"];
  node(around:%d,%f,%f)["highway"="bus_stop"];
);
out body;`, radiusM, lat, lon, radiusM, lat, lon, radiusM, lat, lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, upstream.Wrap(upstream.Validation, "overpass: build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, upstream.Wrap(upstream.Unavailable, "overpass: request", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.Errorf(upstream.Unavailable, "overpass: nodes around", "status %d", resp.StatusCode)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, upstream.Wrap(upstream.Degraded, "overpass: nodes around", err)
	}

	nodes := make([]Node, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		if el.Type != "node" {
			continue
		}
		nodes = append(nodes, Node{ID: el.ID, Lat: el.Lat, Lon: el.Lon, Tags: el.Tags})
	}
	return nodes, nil
}
