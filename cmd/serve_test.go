package main

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainServer_CompletesInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	status := make(chan int, 1)
	go func() {
		resp, getErr := http.Get("http://" + ln.Addr().String())
		if getErr != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	// Shut down while the request is still being handled; the drain must
	// let it finish.
	<-started
	drainServer(srv)

	assert.Equal(t, http.StatusOK, <-status)
	assert.ErrorIs(t, <-serveErr, http.ErrServerClosed)
}
