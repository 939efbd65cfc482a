package beacon

import (
	"time"

	"codeberg.org/cookieless/beacon/internal/events"
	"codeberg.org/cookieless/beacon/internal/tracker"
)

const (
	// request header carrying the token the browser cached
	HeaderIfNoneMatch = "If-None-Match"

	// response header carrying the token the browser should cache
	HeaderETag = "ETag"

	// query parameter naming the JSONP callback
	CallbackParam = "callback"
)

// collaborators of the beacon handler
type Deps struct {
	Engine *tracker.Engine

	// invoked once per processed request, before the response is written.
	// must not block; in the server it is Dispatcher.Publish
	OnVisitor func(events.Event)

	// bot score at which an event is flagged as bot traffic
	BotThreshold int

	// current time; time.Now when nil
	Now func() time.Time
}
