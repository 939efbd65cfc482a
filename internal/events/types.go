package events

import (
	"context"
	"errors"
	"time"

	"codeberg.org/cookieless/beacon/internal/tracker"
	"github.com/oklog/ulid/v2"
)

var (
	ErrUnknownSink      = errors.New("unknown event sink")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// describes one processed beacon request
type Event struct {
	EventID    string    `json:"event_id"`
	VisitorID  string    `json:"visitor_id"`
	Session    int64     `json:"session"`
	LastSeen   int64     `json:"last_seen"`
	Token      string    `json:"token"`
	Outcome    string    `json:"outcome"`
	Changed    bool      `json:"changed"`
	Status     int       `json:"status"`
	Path       string    `json:"path,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Referer    string    `json:"referer,omitempty"`
	BotScore   int       `json:"bot_score"`
	Bot        bool      `json:"bot"`
	ReceivedAt time.Time `json:"received_at"`
}

// request details that travel with the visitor
type RequestMeta struct {
	Path      string
	ClientIP  string
	UserAgent string
	Referer   string
	BotScore  int
	Bot       bool
}

// builds the event for a tracked visitor
func NewEvent(v tracker.Visitor, meta RequestMeta, at time.Time) Event {
	return Event{
		EventID:    ulid.Make().String(),
		VisitorID:  v.State.ID,
		Session:    v.State.Session,
		LastSeen:   v.State.LastSeen,
		Token:      v.Token,
		Outcome:    v.Outcome.String(),
		Changed:    v.Changed,
		Status:     v.Status(),
		Path:       meta.Path,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referer:    meta.Referer,
		BotScore:   meta.BotScore,
		Bot:        meta.Bot,
		ReceivedAt: at.UTC(),
	}
}

// receives visitor events. Write is only ever called from the dispatcher's
// worker goroutine, never from a request
type Sink interface {
	Name() string
	Write(ctx context.Context, e Event) error
	Close() error
}
