package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/cookieless/beacon/internal/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(cfg)
	require.NoError(t, err)

	srv.Start()
	t.Cleanup(func() {
		srv.Shutdown(context.Background()) //nolint:errcheck,gosec // test cleanup
	})

	return srv
}

func serve(srv *Server, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, r)

	return w
}

func TestServer_BeaconRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	first := serve(srv, httptest.NewRequest(http.MethodGet, "/i.js?callback=track", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "text/javascript", first.Header().Get("Content-Type"))
	assert.Contains(t, first.Body.String(), "; typeof track === 'function' && track({id: ")

	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	r := httptest.NewRequest(http.MethodGet, "/i.js", nil)
	r.Header.Set("If-None-Match", etag)
	second := serve(srv, r)

	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Equal(t, etag, second.Header().Get("ETag"))
	assert.Empty(t, second.Body.String())

	// both hits reached the dispatcher
	assert.Eventually(t, func() bool {
		return srv.dispatcher.Stats().Delivered == 2
	}, time.Second, 10*time.Millisecond)
}

func TestServer_UnknownPathIsEmpty(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/", "/robots.txt", "/api/v1/unknown"} {
		w := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
	}
}

func TestServer_CustomBeaconPath(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.BeaconPath = "/pixel"
	})

	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/pixel.js", nil)).Code)
	assert.NotEmpty(t, serve(srv, httptest.NewRequest(http.MethodGet, "/pixel", nil)).Header().Get("ETag"))
	assert.Empty(t, serve(srv, httptest.NewRequest(http.MethodGet, "/i.js", nil)).Header().Get("ETag"))
}

func TestServer_CORSExposesETag(t *testing.T) {
	srv := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodGet, "/i.js", nil)
	r.Header.Set("Origin", "https://site.example")
	w := serve(srv, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Etag")
}

func TestServer_HealthReportsSinks(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.EventSinks = []string{config.SinkLog, config.SinkLive}
	})

	require.NotNil(t, srv.hub)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sinks []string `json:"sinks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"log", "live"}, body.Sinks)
}

func TestServer_RateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = "1-M"
	})

	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/i.js", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(srv, httptest.NewRequest(http.MethodGet, "/i.js", nil)).Code)

	// other endpoints are not limited
	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestServer_InvalidRateLimit(t *testing.T) {
	cfg := config.Defaults()
	cfg.RateLimit = "often"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestServer_RedisSinkWithoutClient(t *testing.T) {
	cfg := config.Defaults()
	cfg.EventSinks = []string{config.SinkRedis}

	_, err := NewServer(cfg)
	assert.Error(t, err)
}
