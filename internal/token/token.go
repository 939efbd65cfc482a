package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// separates the three fields of a token
const Delimiter = "."

var ErrMalformedToken = errors.New("malformed token")

// holds the visitor fields carried inside a token
type State struct {
	ID       string
	LastSeen int64 // epoch milliseconds
	Session  int64
}

// serializes a state into its canonical "{id}.{lastSeen}.{session}" form.
// no escaping is performed, the id must never contain the delimiter
func Encode(s State) string {
	var b strings.Builder
	b.Grow(len(s.ID) + 2*len(Delimiter) + 20)

	b.WriteString(s.ID)
	b.WriteString(Delimiter)
	b.WriteString(strconv.FormatInt(s.LastSeen, 10))
	b.WriteString(Delimiter)
	b.WriteString(strconv.FormatInt(s.Session, 10))

	return b.String()
}

// parses a token back into a state.
// the id is everything before the first delimiter, the timestamp is the second
// field and the session is everything after the last delimiter
func Decode(tok string) (State, error) {
	segments := strings.Split(tok, Delimiter)
	if len(segments) < 3 {
		return State{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}

	id := segments[0]
	if id == "" {
		return State{}, fmt.Errorf("%w: empty id", ErrMalformedToken)
	}

	if !isDigits(segments[1]) {
		return State{}, fmt.Errorf("%w: last seen %q is not numeric", ErrMalformedToken, segments[1])
	}

	lastSeen, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil {
		return State{}, fmt.Errorf("%w: last seen: %v", ErrMalformedToken, err)
	}

	raw := segments[len(segments)-1]
	if !isDigits(raw) {
		return State{}, fmt.Errorf("%w: session %q is not numeric", ErrMalformedToken, raw)
	}

	session, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return State{}, fmt.Errorf("%w: session: %v", ErrMalformedToken, err)
	}

	if session < 1 {
		return State{}, fmt.Errorf("%w: session must be positive", ErrMalformedToken)
	}

	return State{ID: id, LastSeen: lastSeen, Session: session}, nil
}

// reports whether the token is well formed
func Valid(tok string) bool {
	_, err := Decode(tok)
	return err == nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
