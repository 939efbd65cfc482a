package beacon

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// mounts the beacon on every path starting with path, for any method.
// any other unmatched request gets an empty 200
func RegisterRoutes(router *gin.Engine, path string, handlers ...gin.HandlerFunc) {
	router.Any(path, handlers...)

	router.NoRoute(func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, path) {
			c.Status(http.StatusOK)
			return
		}

		// NoRoute chains skip route middleware, so run the beacon chain here
		for _, h := range handlers {
			h(c)

			if c.IsAborted() {
				return
			}
		}
	})
}
