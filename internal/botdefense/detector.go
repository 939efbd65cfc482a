package botdefense

import (
	"net/http"
	"strings"
)

// known automated user-agent fragments (matched lowercase)
var botPatterns = []string{
	"bot",
	"crawler",
	"spider",
	"scraper",
	"slurp",
	"preview",
	"monitor",
	"curl",
	"wget",
	"httpie",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"java/",
	"okhttp",
	"node-fetch",
	"axios",
	"libwww",
	"headless",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
	"lighthouse",
}

// legitimate browser indicators
var browserIndicators = []string{
	"mozilla",
	"chrome",
	"safari",
	"firefox",
	"edg",
	"opera",
}

// headers every browser sends when loading a script, with the weight of their absence
var expectedHeaders = []struct {
	name   string
	weight int
}{
	{"Accept", 10},
	{"Accept-Language", 10},
	{"Accept-Encoding", 10},
}

// contains detected bot indicators for one beacon hit
type Signals struct {
	EmptyUserAgent  bool     `json:"empty_user_agent,omitempty"`
	ShortUserAgent  bool     `json:"short_user_agent,omitempty"`
	BotPatternMatch string   `json:"bot_pattern,omitempty"`
	MissingHeaders  []string `json:"missing_headers,omitempty"`
	Score           int      `json:"score"`
}

// reports whether the score reaches the threshold
func (s *Signals) IsBot(threshold int) bool {
	return s != nil && s.Score >= threshold
}

// analyzes a request for bot indicators.
// higher scores are more likely automated traffic
func Detect(r *http.Request) *Signals {
	signals := &Signals{}
	userAgent := r.Header.Get("User-Agent")
	lower := strings.ToLower(userAgent)

	switch {
	case userAgent == "":
		signals.EmptyUserAgent = true
		signals.Score += 50
	case len(userAgent) < 20:
		signals.ShortUserAgent = true
		signals.Score += 30
	}

	for _, pattern := range botPatterns {
		if strings.Contains(lower, pattern) {
			signals.BotPatternMatch = pattern
			signals.Score += 40
			break
		}
	}

	for _, h := range expectedHeaders {
		if r.Header.Get(h.name) == "" {
			signals.MissingHeaders = append(signals.MissingHeaders, h.name)
			signals.Score += h.weight
		}
	}

	// connection: close is typical for one-shot scripts
	if strings.EqualFold(r.Header.Get("Connection"), "close") && !hasBrowserIndicator(lower) {
		signals.Score += 15
	}

	// looks like a real browser with a complete header set
	if hasBrowserIndicator(lower) && len(signals.MissingHeaders) == 0 {
		signals.Score -= 20
		if signals.Score < 0 {
			signals.Score = 0
		}
	}

	return signals
}

func hasBrowserIndicator(userAgentLower string) bool {
	for _, indicator := range browserIndicators {
		if strings.Contains(userAgentLower, indicator) {
			return true
		}
	}

	return false
}
