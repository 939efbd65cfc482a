package websocket

type ConnectParams struct {
	IncludeBots bool `form:"bots"` // also stream events scored as bot traffic
}
