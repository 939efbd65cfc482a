package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/cookieless/beacon/internal/botdefense"
	"codeberg.org/cookieless/beacon/internal/config"
	"codeberg.org/cookieless/beacon/internal/events"
	"codeberg.org/cookieless/beacon/internal/logger"
	ws "codeberg.org/cookieless/beacon/internal/websocket"
)

// how long startup waits for redis to answer a ping
const redisPingTimeout = 5 * time.Second

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	server := &Server{config: cfg}

	if cfg.RedisURL != "" {
		client, err := connectRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}

		server.redis = client
	}

	deps := events.Deps{Logger: logger.Default()}

	// interface fields stay nil unless the client exists
	if server.redis != nil {
		deps.Redis = server.redis
	}

	if cfg.HasSink(config.SinkLive) {
		server.hub = ws.NewHub()
		deps.Live = server.hub
	}

	sinks, err := events.BuildSinks(cfg, deps)
	if err != nil {
		server.closeRedis()
		return nil, fmt.Errorf("failed to build event sinks: %w", err)
	}

	server.dispatcher = events.NewDispatcher(cfg.EventBuffer, sinks...)

	logger.Info("visitor event pipeline initialized",
		"sinks", server.dispatcher.SinkNames(),
		"buffer", cfg.EventBuffer,
	)

	botDefenseConfig := botdefense.DefaultConfig()
	classifier := botdefense.New(botDefenseConfig)

	logger.Info("bot classification initialized",
		"enabled", botDefenseConfig.Enabled,
		"threshold", botDefenseConfig.Threshold,
	)

	router := gin.New()

	// a trailing slash is still a beacon path prefix, never a redirect
	router.RedirectTrailingSlash = false

	router.Use(
		gin.Recovery(),
		logger.Middleware(),
		CORSMiddleware(cfg.AllowedOrigins),
		classifier.Middleware(),
	)

	server.router = router

	if err := RegisterRoutes(router, server, classifier); err != nil {
		server.dispatcher.Close(context.Background()) //nolint:errcheck,gosec // best-effort cleanup on init failure
		server.closeRedis()
		return nil, err
	}

	return server, nil
}

func connectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// starts background loops owned by the server
func (s *Server) Start() {
	if s.hub != nil {
		go s.hub.Run()
	}
}

// drains visitor events, closes the sinks and releases shared clients
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.dispatcher.Close(ctx)

	// closing the dispatcher closed the hub sink; give its loop a moment to say goodbye
	if s.hub != nil && !s.hub.Wait(2*time.Second) {
		logger.Warn("live hub did not stop in time")
	}

	s.closeRedis()

	return err
}

func (s *Server) closeRedis() {
	if s.redis == nil {
		return
	}

	if err := s.redis.Close(); err != nil {
		logger.ErrorErr(err, "failed to close redis client")
	}
}
