// Package reiv resolves suburb median-price data from REIV suburb pages.
// Results are cached in-process for a short TTL so the per-listing lookup
// path does not hammer the upstream.
package reiv

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/cache"
	"github.com/haihuyentran/melbourne-properties/internal/fetch"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

const (
	defaultBaseURL = "https://reiv.com.au/market-insights/suburb"
	defaultTTL     = 5 * time.Minute
)

// SuburbPrice is the resolved median-price record for one suburb slug.
type SuburbPrice struct {
	MedianPrice     int      `json:"median_price"`
	MedianPriceUnit string   `json:"median_price_unit"`
	QuarterlyChange *float64 `json:"quarterly_change"`
	Source          string   `json:"source"`
}

// Client fetches and parses suburb pages, cache-first.
type Client struct {
	baseURL string
	fetcher *fetch.Fetcher
	cache   *cache.TTL[*SuburbPrice]
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the suburb page base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithFetcher substitutes the HTTP fetcher.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

// WithTTL overrides the cache window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = cache.NewTTL[*SuburbPrice](ttl) }
}

// New creates a price resolver with a 5-minute cache.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		cache:   cache.NewTTL[*SuburbPrice](defaultTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetch.New()
	}
	return c
}

// Cache exposes the TTL cache for tests and stats.
func (c *Client) Cache() *cache.TTL[*SuburbPrice] { return c.cache }

// Resolve returns the median-price record for a suburb slug. Within the TTL
// window repeated calls hit the cache and trigger no upstream fetch. A
// non-2xx answer is a classified NotFound; a 2xx page no strategy can parse
// is classified Degraded.
func (c *Client) Resolve(ctx context.Context, slug string) (*SuburbPrice, error) {
	if slug == "" {
		return nil, upstream.Errorf(upstream.Validation, "reiv: resolve", "empty slug")
	}

	if cached, ok := c.cache.Get(slug); ok {
		return cached, nil
	}

	pageURL := c.baseURL + "/" + slug
	resp, err := c.fetcher.GetAny(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstream.Errorf(upstream.NotFound, "reiv: resolve",
			"status %d for slug %q", resp.StatusCode, slug)
	}

	body := string(resp.Body)
	price, unit, ok := parsePrice(body)
	if !ok {
		return nil, upstream.Errorf(upstream.Degraded, "reiv: resolve",
			"no price found on page for slug %q", slug)
	}

	result := &SuburbPrice{
		MedianPrice:     price,
		MedianPriceUnit: unit,
		QuarterlyChange: parseQuarterlyChange(body),
		Source:          pageURL,
	}
	c.cache.Put(slug, result)

	zap.L().Debug("reiv: resolved",
		zap.String("slug", slug),
		zap.Int("median_price", price),
	)
	return result, nil
}

// priceStrategy tries to pull a median price from page text. Strategies are
// tried in order; the first range-valid hit wins.
type priceStrategy func(body string) (price int, unit string, ok bool)

var priceStrategies = []priceStrategy{
	parseLabelledMedian,
	parseLooseDollar,
}

func parsePrice(body string) (int, string, bool) {
	for _, s := range priceStrategies {
		if price, unit, ok := s(body); ok && priceSane(price) {
			return price, unit, true
		}
	}
	return 0, "", false
}

// priceSane bounds accepted medians; anything outside is a parse artifact.
func priceSane(price int) bool {
	return price >= 10_000 && price <= 99_999_999
}

var labelledMedianRe = regexp.MustCompile(
	`(?is)median\s+sale\s+price.{0,120}?\$\s*([\d.,]+)\s*(m|k)?\b`)

// parseLabelledMedian matches an explicit "median sale price" label followed
// by a million/thousand/plain dollar token.
func parseLabelledMedian(body string) (int, string, bool) {
	m := labelledMedianRe.FindStringSubmatch(body)
	if m == nil {
		return 0, "", false
	}
	return expandDollarToken(m[1], strings.ToLower(m[2]))
}

var looseDollarRe = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3}){1,2})\b`)

// parseLooseDollar scans for the first plausible full dollar amount.
func parseLooseDollar(body string) (int, string, bool) {
	m := looseDollarRe.FindStringSubmatch(body)
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, "", false
	}
	return v, "AUD", true
}

// expandDollarToken turns "1.2"+"m" into 1200000, "850"+"k" into 850000, and
// a plain "912,000" into 912000.
func expandDollarToken(num, suffix string) (int, string, bool) {
	num = strings.ReplaceAll(num, ",", "")
	switch suffix {
	case "m":
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, "", false
		}
		return int(math.Round(f*1_000_000)), "AUD", true
	case "k":
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, "", false
		}
		return int(math.Round(f*1_000)), "AUD", true
	default:
		// Strip a trailing decimal part if present ("912000.00").
		if i := strings.IndexByte(num, '.'); i >= 0 {
			num = num[:i]
		}
		v, err := strconv.Atoi(num)
		if err != nil {
			return 0, "", false
		}
		return v, "AUD", true
	}
}

var quarterlyChangeRe = regexp.MustCompile(
	`(?is)quarterly\s+change.{0,60}?(-?\d+(?:\.\d+)?)\s*%`)

func parseQuarterlyChange(body string) *float64 {
	m := quarterlyChangeRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
