package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

func TestGet_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(WithUserAgent("melbourne-properties/test"))
	resp, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "melbourne-properties/test", gotUA)
	assert.Equal(t, []byte("ok"), resp.Body)
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := New(WithRetry(upstream.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		JitterFraction: 0,
	}))
	resp, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())
	assert.Equal(t, []byte("recovered"), resp.Body)
}

func TestGet_NonTransientStatusNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New()
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, upstream.Unavailable, upstream.KindOf(err))
}

func TestGetAny_ReturnsNonTwoxx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("denied"))
	}))
	defer srv.Close()

	f := New()
	resp, err := f.GetAny(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []byte("denied"), resp.Body)
}

func TestGetAny_RejectsBadURL(t *testing.T) {
	f := New()
	_, err := f.GetAny(context.Background(), "not a url")
	require.Error(t, err)
	assert.Equal(t, upstream.Validation, upstream.KindOf(err))
}

func TestGet_MinDelayGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	const n = 4
	const minDelay = 30 * time.Millisecond

	f := New(WithMinDelay(minDelay))
	start := time.Now()
	for i := 0; i < n; i++ {
		_, err := f.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// N gated calls take at least (N-1) x the minimum delay.
	assert.GreaterOrEqual(t, elapsed, (n-1)*minDelay)
}

func TestGet_NetworkErrorClassifiedUnavailable(t *testing.T) {
	f := New(WithRetry(upstream.RetryConfig{
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
	}))
	_, err := f.Get(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Equal(t, upstream.Unavailable, upstream.KindOf(err))
}
