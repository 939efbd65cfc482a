package inspect

import (
	"net/http"
	"time"

	"codeberg.org/cookieless/beacon/api/rest/beacon"
	"codeberg.org/cookieless/beacon/internal/errors"
	"codeberg.org/cookieless/beacon/internal/tracker"
	"github.com/gin-gonic/gin"
)

// reports what a token decodes to without issuing a new one.
// the token comes from ?token= or, failing that, If-None-Match
func Handler(now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}

	engine := tracker.NewEngine(tracker.WithoutRenewal())

	return func(c *gin.Context) {
		var params Params
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.ValidationError(c, err)
			return
		}

		tok := params.Token
		if tok == "" {
			tok = c.GetHeader(beacon.HeaderIfNoneMatch)
		}

		tok = beacon.NormalizeToken(tok)
		if tok == "" {
			errors.BadRequest(c, "token is required", nil)
			return
		}

		checkedAt := now()
		nowMillis := checkedAt.UnixMilli()

		visitor := engine.Track(tok, nowMillis)
		if visitor.DecodeErr != nil {
			errors.BadRequest(c, "invalid token", visitor.DecodeErr)
			return
		}

		idle := nowMillis - visitor.State.LastSeen

		c.JSON(http.StatusOK, Response{
			Token:      visitor.Token,
			VisitorID:  visitor.State.ID,
			Session:    visitor.State.Session,
			LastSeen:   visitor.State.LastSeen,
			IdleMillis: idle,
			Expired:    idle >= tracker.SessionTimeoutMillis,
			CheckedAt:  checkedAt.UTC(),
		})
	}
}
