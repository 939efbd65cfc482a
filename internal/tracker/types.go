package tracker

import (
	"time"

	"codeberg.org/cookieless/beacon/internal/token"
)

const (
	// idle time after which a returning visitor starts a new session
	SessionTimeout = 30 * time.Minute

	// SessionTimeout in epoch-millisecond units
	SessionTimeoutMillis = int64(SessionTimeout / time.Millisecond)

	// callback invoked by the script when the request names none
	DefaultCallback = "cookielessCallback"

	// content type of every beacon response
	ContentType = "text/javascript"
)

// describes how a request's visitor state was derived
type Outcome int

const (
	// no usable token was presented, a new visitor was minted
	OutcomeNew Outcome = iota

	// token presented and still inside the idle window
	OutcomeContinued

	// token presented but the idle window elapsed, session was bumped
	OutcomeRenewed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeContinued:
		return "session_continued"
	case OutcomeRenewed:
		return "session_renewed"
	default:
		return "unknown"
	}
}

// mints visitor ids; *token.Generator satisfies it
type IDGenerator interface {
	NewID(now int64) string
}

// is the result of tracking a single request. it is a value and is never
// mutated after Track returns
type Visitor struct {
	State   token.State
	Token   string
	Outcome Outcome

	// true when Token differs from the token the client presented
	Changed bool

	// set when a token was presented but could not be decoded
	DecodeErr error
}

// is the status/header/body decision for a visitor
type Response struct {
	Status int
	ETag   string
	Body   []byte
}
