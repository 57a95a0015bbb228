// Package fetch wraps net/http with the behavior every upstream call in this
// module needs: a descriptive User-Agent, an explicit timeout, an optional
// minimum-delay gate, and bounded retries on transient failures.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

const defaultUserAgent = "melbourne-properties/1.0 (housing market research)"

// maxBodyBytes caps response reads; listing pages stay well under this.
const maxBodyBytes = 2 << 20

// Response is the outcome of a successful transport round trip. The status
// code may still be non-2xx when fetched via GetAny.
type Response struct {
	StatusCode int
	Body       []byte
	FinalURL   string
}

// Fetcher issues rate-limited GET requests.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	gate        *rate.Limiter
	retry       upstream.RetryConfig
	extraHeader http.Header
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent overrides the default User-Agent string.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithMinDelay installs a gate enforcing a minimum delay between calls.
// Every request through this Fetcher shares the gate, regardless of caller.
func WithMinDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.gate = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(cfg upstream.RetryConfig) Option {
	return func(f *Fetcher) { f.retry = cfg }
}

// WithHTTPClient substitutes the underlying client. Tests mostly.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.client = hc }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(f *Fetcher) {
		if f.extraHeader == nil {
			f.extraHeader = http.Header{}
		}
		f.extraHeader.Set(key, value)
	}
}

// New creates a Fetcher. Defaults: 15s timeout, 3 attempts, no gate.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
		retry:     upstream.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get fetches rawURL and requires a 2xx answer. Non-2xx after retries is
// classified Unavailable; the caller never sees a partial body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := f.GetAny(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstream.Errorf(upstream.Unavailable, "fetch: get",
			"status %d from %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// GetAny fetches rawURL and returns whatever status the server settled on,
// retrying only transport errors and transient statuses.
func (f *Fetcher) GetAny(ctx context.Context, rawURL string) (*Response, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil || !strings.HasPrefix(rawURL, "http") {
		return nil, upstream.Errorf(upstream.Validation, "fetch: get", "not a fetchable url: %q", rawURL)
	}

	var out *Response
	err := upstream.Retry(ctx, f.retry, func(ctx context.Context) error {
		if f.gate != nil {
			if err := f.gate.Wait(ctx); err != nil {
				return upstream.Wrap(upstream.Unavailable, "fetch: gate", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return upstream.Wrap(upstream.Validation, "fetch: build request", err)
		}
		req.Header.Set("User-Agent", f.userAgent)
		for k, vs := range f.extraHeader {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return upstream.Wrap(upstream.Unavailable, "fetch: do", err)
		}
		defer resp.Body.Close() //nolint:errcheck

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return upstream.Wrap(upstream.Unavailable, "fetch: read body", err)
		}

		if upstream.IsTransientHTTPStatus(resp.StatusCode) {
			zap.L().Warn("fetch: transient status, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
			)
			return upstream.Errorf(upstream.Unavailable, "fetch: get",
				"status %d from %s", resp.StatusCode, rawURL)
		}

		out = &Response{
			StatusCode: resp.StatusCode,
			Body:       body,
			FinalURL:   resp.Request.URL.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
