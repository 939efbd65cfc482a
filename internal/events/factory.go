package events

import (
	"fmt"
	"log/slog"

	"codeberg.org/cookieless/beacon/internal/config"
	"github.com/redis/go-redis/v9"
)

// shared clients the sinks may need. Live is the websocket hub when enabled
type Deps struct {
	Logger *slog.Logger
	Redis  redis.UniversalClient
	Live   Sink
}

// creates the sinks named in the configuration, in order
func BuildSinks(cfg *config.Config, deps Deps) ([]Sink, error) {
	sinks := make([]Sink, 0, len(cfg.EventSinks))

	for _, name := range cfg.EventSinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, NewLogSink(deps.Logger))

		case config.SinkRedis:
			if deps.Redis == nil {
				return nil, fmt.Errorf("redis sink requires a redis client")
			}
			sinks = append(sinks, NewRedisSink(deps.Redis, cfg.RedisStream))

		case config.SinkKafka:
			if len(cfg.KafkaBrokers) == 0 {
				return nil, fmt.Errorf("kafka sink requires at least one broker")
			}
			sinks = append(sinks, NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))

		case config.SinkLive:
			if deps.Live == nil {
				return nil, fmt.Errorf("live sink requires a websocket hub")
			}
			sinks = append(sinks, deps.Live)

		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownSink, name)
		}
	}

	return sinks, nil
}
