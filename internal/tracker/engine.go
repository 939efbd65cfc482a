package tracker

import (
	"math"

	"codeberg.org/cookieless/beacon/internal/token"
)

// applies the session rules to a presented token.
// it keeps no state between calls; the only shared dependency is the id generator
type Engine struct {
	ids     IDGenerator
	timeout int64
	renew   bool
}

type Option func(*Engine)

// replaces the default id generator
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) {
		if ids != nil {
			e.ids = ids
		}
	}
}

// decodes presented tokens without applying the idle timeout,
// so an expired session is reported as it is instead of being bumped
func WithoutRenewal() Option {
	return func(e *Engine) {
		e.renew = false
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ids:     token.NewGenerator(nil),
		timeout: SessionTimeoutMillis,
		renew:   true,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// derives the visitor for a request. prior is the token the client presented
// (empty when none) and now is the current epoch-millisecond time
func (e *Engine) Track(prior string, now int64) Visitor {
	if prior == "" {
		return e.mint(now, nil)
	}

	state, err := token.Decode(prior)
	if err != nil {
		return e.mint(now, err)
	}

	if e.renew && now-state.LastSeen >= e.timeout {
		// the counter saturates so it never wraps below the presented value
		if state.Session < math.MaxInt64 {
			state.Session++
		}
		state.LastSeen = now

		return Visitor{
			State:   state,
			Token:   token.Encode(state),
			Outcome: OutcomeRenewed,
			Changed: true,
		}
	}

	// lastSeen stays anchored to the session start until the next renewal
	return Visitor{
		State:   state,
		Token:   prior,
		Outcome: OutcomeContinued,
		Changed: false,
	}
}

func (e *Engine) mint(now int64, decodeErr error) Visitor {
	state := token.State{
		ID:       e.ids.NewID(now),
		LastSeen: now,
		Session:  1,
	}

	return Visitor{
		State:     state,
		Token:     token.Encode(state),
		Outcome:   OutcomeNew,
		Changed:   true,
		DecodeErr: decodeErr,
	}
}
