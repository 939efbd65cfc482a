package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "beacon"
	version     = "1.0.0"
)

// returns the server health status along with event pipeline counters
func Handler(reporter EventReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
		}

		if reporter != nil {
			stats := reporter.Stats()
			resp.Events = &stats
			resp.Sinks = reporter.SinkNames()
		}

		c.JSON(http.StatusOK, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message: "pong",
	})
}
