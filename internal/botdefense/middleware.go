package botdefense

import (
	"github.com/gin-gonic/gin"
)

// gin context key holding the *Signals of the current request
const ContextKey = "bot_signals"

// scores requests without ever blocking them. the beacon must keep answering
// bots with valid tokens; the score only travels with the visitor event
type Classifier struct {
	config *Config
}

func New(config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}

	return &Classifier{config: config}
}

// returns the configured threshold
func (cl *Classifier) Threshold() int {
	return cl.config.Threshold
}

// returns a gin middleware storing the request's signals under ContextKey
func (cl *Classifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cl.config.Enabled && !cl.config.IsExemptPath(c.Request.URL.Path) {
			c.Set(ContextKey, Detect(c.Request))
		}

		c.Next()
	}
}

// returns the signals stored by the middleware, nil when the request was not scored
func FromContext(c *gin.Context) *Signals {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}

	signals, _ := v.(*Signals)
	return signals
}
