package roster

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobydigital/login-service/pkg/httpclient"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	inner := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      0,
		MaxConnsPerHost: 10,
	})
	return New(inner, server.URL+"/check/", time.Second, newTestLogger())
}

func TestIsActive_True(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check/ana@moby.com", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`true`))
	})

	active, err := client.IsActive(context.Background(), "ana@moby.com")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestIsActive_False(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`false`))
	})

	active, err := client.IsActive(context.Background(), "ana@moby.com")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestIsActive_UnknownEmailIsInactive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	active, err := client.IsActive(context.Background(), "ghost@moby.com")
	require.NoError(t, err, "a 4xx roster answer is inactive, not a failure")
	assert.False(t, active)
}

func TestIsActive_ServerErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("roster down"))
	})

	_, err := client.IsActive(context.Background(), "ana@moby.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestIsActive_TransportError(t *testing.T) {
	inner := httpclient.New(httpclient.Config{
		Timeout:         200 * time.Millisecond,
		MaxRetries:      0,
		MaxConnsPerHost: 10,
	})
	client := New(inner, "http://127.0.0.1:1/check/", time.Second, newTestLogger())

	_, err := client.IsActive(context.Background(), "ana@moby.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call roster service")
}

func TestIsActive_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not-json`))
	})

	_, err := client.IsActive(context.Background(), "ana@moby.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode roster response")
}
