package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// returns a gin middleware that logs one line per request and attaches a
// request-scoped logger to the request context
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqLogger := defaultLogger.With(
			"method", c.Request.Method,
			"path", path,
			"client_ip", c.ClientIP(),
		)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelDebug

		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		reqLogger.Log(c.Request.Context(), level, "request handled",
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
