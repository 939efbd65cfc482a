package botdefense

import (
	"strings"
)

// holds bot classification configuration
type Config struct {
	// whether requests are scored at all
	Enabled bool

	// minimum score to consider a request as bot-like
	Threshold int

	// paths that are never scored (health checks, etc.)
	ExemptPaths []string
}

// returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Threshold: 40,
		ExemptPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/ping",
			"/api/v1/live", // websocket connections are dashboards, not visitors
		},
	}
}

// checks if a path bypasses classification
func (c *Config) IsExemptPath(path string) bool {
	for _, ep := range c.ExemptPaths {
		if path == ep || strings.HasPrefix(path, ep+"/") {
			return true
		}
	}

	return false
}
