package tracker

import (
	"net/http"
	"testing"

	"codeberg.org/cookieless/beacon/internal/token"
	"github.com/stretchr/testify/assert"
)

var oldState = token.State{ID: "751429049947678", LastSeen: 1429043947680, Session: 2}

func TestScript_DefaultCallback(t *testing.T) {
	got := Script("", oldState)

	assert.Equal(t,
		"; typeof cookielessCallback === 'function' && cookielessCallback({id: 751429049947678,session: 2,lastSeen: 1429043947680});",
		got,
	)
}

func TestScript_CustomCallback(t *testing.T) {
	got := Script("setVisitor", oldState)

	assert.Equal(t,
		"; typeof setVisitor === 'function' && setVisitor({id: 751429049947678,session: 2,lastSeen: 1429043947680});",
		got,
	)
}

func TestCallbackName(t *testing.T) {
	assert.Equal(t, DefaultCallback, CallbackName(""))
	assert.Equal(t, "setVisitor", CallbackName("setVisitor"))
}

func TestResponse_Changed(t *testing.T) {
	visitor := Visitor{State: oldState, Token: token.Encode(oldState), Outcome: OutcomeNew, Changed: true}

	resp := visitor.Response("track")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "751429049947678.1429043947680.2", resp.ETag)
	assert.Equal(t, Script("track", oldState), string(resp.Body))
}

func TestResponse_Unchanged(t *testing.T) {
	visitor := Visitor{State: oldState, Token: token.Encode(oldState), Outcome: OutcomeContinued}

	resp := visitor.Response("track")

	assert.Equal(t, http.StatusNotModified, resp.Status)
	assert.Equal(t, "751429049947678.1429043947680.2", resp.ETag)
	assert.Nil(t, resp.Body)
}
