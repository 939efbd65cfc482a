package inspect

import "time"

type Params struct {
	Token string `form:"token" binding:"max=256"`
}

// decoded visitor state of a presented token
type Response struct {
	Token     string `json:"token"`
	VisitorID string `json:"visitor_id"`
	Session   int64  `json:"session"`
	LastSeen  int64  `json:"last_seen"`

	// milliseconds since lastSeen, negative when lastSeen lies in the future
	IdleMillis int64 `json:"idle_ms"`

	// true when the next beacon hit would start a new session
	Expired bool `json:"expired"`

	CheckedAt time.Time `json:"checked_at"`
}
