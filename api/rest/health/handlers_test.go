package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/cookieless/beacon/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct{}

func (fakeReporter) Stats() events.Stats {
	return events.Stats{Delivered: 7, Dropped: 1, Queued: 2}
}

func (fakeReporter) SinkNames() []string { return []string{"log", "live"} }

func serve(reporter EventReporter, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router, router.Group("/api/v1"), reporter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	return w
}

func TestHandler(t *testing.T) {
	w := serve(fakeReporter{}, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "beacon", resp.Service)
	assert.Equal(t, []string{"log", "live"}, resp.Sinks)
	require.NotNil(t, resp.Events)
	assert.Equal(t, uint64(7), resp.Events.Delivered)
	assert.Equal(t, 2, resp.Events.Queued)
}

func TestHandler_WithoutReporter(t *testing.T) {
	w := serve(nil, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), "events")
}

func TestPingHandler(t *testing.T) {
	w := serve(nil, "/api/v1/ping")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
