package ratelimit

import (
	"fmt"
	"strconv"
	"time"

	"codeberg.org/cookieless/beacon/internal/errors"
	"codeberg.org/cookieless/beacon/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	keyPrefix = "beacon:ratelimit"

	// how often the memory store evicts expired counters
	cleanUpInterval = time.Minute
)

// creates a per-key limiter from a formatted rate such as "600-M".
// counters live in redis when a client is given, in process memory otherwise
func New(formatted string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	var store limiter.Store

	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   keyPrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: cleanUpInterval,
		})
	}

	return limiter.New(store, rate), nil
}

// returns a gin middleware limiting requests per client IP.
// store failures let the request through.
// the middleware never calls c.Next, so it also works when run by hand from a NoRoute chain
func Middleware(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		lc, err := l.Get(c, ip)
		if err != nil {
			logger.ErrorErr(err, "rate limiter unavailable", "ip", ip)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

		if lc.Reached {
			logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)

			c.Header("Retry-After", strconv.FormatInt(retryAfter(lc.Reset, time.Now()), 10))
			errors.TooManyRequests(c, "too many requests. please slow down.")
		}
	}
}

// seconds until the window resets, at least one
func retryAfter(reset int64, now time.Time) int64 {
	return max(1, reset-now.Unix())
}
