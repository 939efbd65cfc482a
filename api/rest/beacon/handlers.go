package beacon

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/cookieless/beacon/internal/botdefense"
	"codeberg.org/cookieless/beacon/internal/events"
	"codeberg.org/cookieless/beacon/internal/logger"
	"codeberg.org/cookieless/beacon/internal/tracker"
	"github.com/gin-gonic/gin"
)

// answers a beacon request with the visitor's token in ETag: 200 and a JSONP
// script when the browser must store a new token, 304 with no body otherwise
func Handler(deps Deps) gin.HandlerFunc {
	engine := deps.Engine
	if engine == nil {
		engine = tracker.NewEngine()
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		receivedAt := now()
		prior := NormalizeToken(c.GetHeader(HeaderIfNoneMatch))

		visitor := engine.Track(prior, receivedAt.UnixMilli())
		if visitor.DecodeErr != nil {
			logger.FromContext(c.Request.Context()).Debug("discarded malformed token",
				"error", visitor.DecodeErr,
			)
		}

		resp := visitor.Response(c.Query(CallbackParam))

		if deps.OnVisitor != nil {
			deps.OnVisitor(events.NewEvent(visitor, requestMeta(c, deps.BotThreshold), receivedAt))
		}

		c.Header(HeaderETag, resp.ETag)

		if resp.Status == http.StatusOK {
			c.Data(http.StatusOK, tracker.ContentType, resp.Body)
			return
		}

		c.Header("Content-Type", tracker.ContentType)
		c.Status(resp.Status)
	}
}

// strips what caches and proxies commonly wrap around an entity tag:
// a weak-validator prefix and surrounding double quotes
func NormalizeToken(raw string) string {
	tok := strings.TrimPrefix(raw, "W/")

	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		tok = tok[1 : len(tok)-1]
	}

	return tok
}

func requestMeta(c *gin.Context, threshold int) events.RequestMeta {
	meta := events.RequestMeta{
		Path:      c.Request.URL.Path,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}

	if signals := botdefense.FromContext(c); signals != nil {
		meta.BotScore = signals.Score
		meta.Bot = signals.IsBot(threshold)
	}

	return meta
}
