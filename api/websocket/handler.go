package websocket

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/cookieless/beacon/internal/errors"
	"codeberg.org/cookieless/beacon/internal/logger"
	ws "codeberg.org/cookieless/beacon/internal/websocket"
)

// creates the upgrader for live feed connections
func NewUpgrader(allowedOrigins []string, production bool) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.CheckOrigin(allowedOrigins, production),
	}
}

// upgrades a dashboard connection and streams visitor events to it.
// the feed is read-only: anything the client sends besides control frames is ignored
func LiveHandler(hub *ws.Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		// check connection limits before accepting new connection
		ipAddress := c.ClientIP()

		if err := hub.Admit(ipAddress); err != nil {
			if stderrors.Is(err, ws.ErrHubClosed) {
				errors.ServiceUnavailable(c, "live feed is shutting down")
				return
			}

			errors.TooManyRequests(c, "too many live connections")
			return
		}

		clientID, err := ws.GenerateClientID()
		if err != nil {
			hub.UntrackIP(ipAddress)
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.UntrackIP(ipAddress)
			logger.ErrorErr(err, "failed to upgrade connection",
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(clientID, ipAddress, params.IncludeBots, conn, hub)

		if err := client.Attach(); err != nil {
			hub.UntrackIP(ipAddress)
			conn.Close() //nolint:errcheck,gosec // hub is gone, nothing to report
			return
		}

		go client.WritePump()
		go client.ReadPump()

		logger.Info("live connection established",
			"client_id", clientID,
			"include_bots", params.IncludeBots,
			"ip", ipAddress,
		)
	}
}
