package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/cookieless/beacon/internal/config"
	"codeberg.org/cookieless/beacon/internal/events"
	ws "codeberg.org/cookieless/beacon/internal/websocket"
)

// holds all dependencies and state for the beacon server
type Server struct {
	config     *config.Config
	router     *gin.Engine
	dispatcher *events.Dispatcher

	// nil unless REDIS_URL is set
	redis *redis.Client

	// nil unless the live sink is enabled
	hub *ws.Hub
}
