package events

import (
	"context"
	"log/slog"

	"codeberg.org/cookieless/beacon/internal/logger"
)

// writes one structured log line per visitor
type LogSink struct {
	log *slog.Logger
}

// a nil logger uses the default one
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = logger.Default()
	}

	return &LogSink{log: l.With("component", "visitors")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(ctx context.Context, e Event) error {
	s.log.InfoContext(ctx, "visitor tracked",
		"event_id", e.EventID,
		"visitor_id", e.VisitorID,
		"session", e.Session,
		"last_seen", e.LastSeen,
		"outcome", e.Outcome,
		"status", e.Status,
		"client_ip", e.ClientIP,
		"bot", e.Bot,
		"bot_score", e.BotScore,
	)

	return nil
}

func (s *LogSink) Close() error { return nil }
