package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	ws "codeberg.org/cookieless/beacon/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, upgrader *websocket.Upgrader) {
	router.GET("/live", LiveHandler(hub, upgrader))
}
