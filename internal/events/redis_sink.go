package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// approximate cap on the stream length
const defaultStreamMaxLen = 100_000

// the subset of the redis client the sink needs
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// appends visitor events to a redis stream.
// the client is shared with other components and is not closed by the sink
type RedisSink struct {
	client streamAdder
	stream string
	maxLen int64
}

func NewRedisSink(client redis.UniversalClient, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream, maxLen: defaultStreamMaxLen}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Write(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal visitor event: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id":   e.EventID,
			"visitor_id": e.VisitorID,
			"session":    strconv.FormatInt(e.Session, 10),
			"outcome":    e.Outcome,
			"payload":    string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to write to redis stream %s: %w", s.stream, err)
	}

	return nil
}

func (s *RedisSink) Close() error { return nil }
