package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/cookieless/beacon/api/rest/beacon"
	"codeberg.org/cookieless/beacon/api/rest/health"
	"codeberg.org/cookieless/beacon/api/rest/inspect"
	"codeberg.org/cookieless/beacon/api/websocket"
	"codeberg.org/cookieless/beacon/internal/botdefense"
	"codeberg.org/cookieless/beacon/internal/events"
	"codeberg.org/cookieless/beacon/internal/ratelimit"
	"codeberg.org/cookieless/beacon/internal/tracker"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server, classifier *botdefense.Classifier) error {
	v1 := router.Group("/api/v1")

	{
		health.RegisterRoutes(router, v1, server.dispatcher)
		inspect.RegisterRoutes(v1, nil)

		if server.hub != nil {
			upgrader := websocket.NewUpgrader(server.config.AllowedOrigins, server.config.IsProduction())
			websocket.RegisterRoutes(v1, server.hub, upgrader)
		}
	}

	var handlers []gin.HandlerFunc

	if server.config.RateLimit != "" {
		l, err := ratelimit.New(server.config.RateLimit, server.redis)
		if err != nil {
			return err
		}

		handlers = append(handlers, ratelimit.Middleware(l))
	}

	handlers = append(handlers, beacon.Handler(beacon.Deps{
		Engine:       tracker.NewEngine(),
		OnVisitor:    func(e events.Event) { server.dispatcher.Publish(e) },
		BotThreshold: classifier.Threshold(),
	}))

	// registered last: it also owns NoRoute
	beacon.RegisterRoutes(router, server.config.BeaconPath, handlers...)

	return nil
}

// allows pages on other origins to read the beacon's ETag and send If-None-Match.
// an empty origin list allows every origin
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Accept", "Content-Type", "If-None-Match",
		},
		ExposeHeaders: []string{
			"ETag", "Content-Type",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		},
	}

	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}

	return cors.New(config)
}
