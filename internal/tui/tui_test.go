package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	livehttp "codeberg.org/cookieless/beacon/api/websocket"
	"codeberg.org/cookieless/beacon/internal/events"
	live "codeberg.org/cookieless/beacon/internal/websocket"
)

func visit(id, outcome string, bot bool) events.Event {
	return events.Event{
		VisitorID:  id,
		Session:    1,
		Outcome:    outcome,
		Status:     200,
		Path:       "/i.js",
		Bot:        bot,
		BotScore:   60,
		ReceivedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return data
}

func TestFeedURL(t *testing.T) {
	u, err := FeedURL("ws://localhost:7123/api/v1/live", false)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:7123/api/v1/live", u)

	u, err = FeedURL("wss://beacon.example/api/v1/live", true)
	require.NoError(t, err)
	assert.Equal(t, "wss://beacon.example/api/v1/live?bots=true", u)

	_, err = FeedURL("http://localhost:7123/api/v1/live", false)
	assert.Error(t, err)
}

func TestDecodeMessage(t *testing.T) {
	welcome, err := live.NewMessage(live.TypeWelcome, live.WelcomePayload{ClientID: "abc"})
	require.NoError(t, err)

	v, err := live.NewMessage(live.TypeVisit, visit("42", "new", false))
	require.NoError(t, err)

	shutdown, err := live.NewMessage(live.TypeServerShutdown, live.ServerShutdownPayload{Reason: "bye"})
	require.NoError(t, err)

	tests := []struct {
		name string
		msg  *live.Message
		want any
		ok   bool
	}{
		{"welcome", welcome, ConnectedMsg{ClientID: "abc"}, true},
		{"visit", v, VisitMsg{Event: visit("42", "new", false)}, true},
		{"other types are skipped", shutdown, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeMessage(mustJSON(t, tt.msg))

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := decodeMessage([]byte("not json"))
	assert.False(t, ok)
}

func TestTally(t *testing.T) {
	var tally Tally

	tally.Add(visit("1", "new", false))
	tally.Add(visit("1", "session_continued", false))
	tally.Add(visit("1", "session_renewed", false))
	tally.Add(visit("2", "new", true))

	assert.Equal(t, 4, tally.Visits)
	assert.Equal(t, 2, tally.Unique())
	assert.Equal(t, 2, tally.New)
	assert.Equal(t, 1, tally.Continued)
	assert.Equal(t, 1, tally.Renewed)
	assert.Equal(t, 1, tally.Bots)
}

func TestFormatVisit(t *testing.T) {
	human := FormatVisit(visit("771700000000000", "new", false))
	assert.Contains(t, human, "771700000000000")
	assert.Contains(t, human, "new")
	assert.Contains(t, human, "/i.js")
	assert.NotContains(t, human, "bot(")

	assert.Contains(t, FormatVisit(visit("1", "new", true)), "bot(60)")
}

func TestModel_Update(t *testing.T) {
	feed := NewFeedClient("ws://unused")
	defer feed.Close()

	m := NewApp(feed)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	require.True(t, m.ready)

	m.Update(ConnectedMsg{ClientID: "0123456789abcdef"})
	assert.True(t, m.connected)

	_, cmd := m.Update(VisitMsg{Event: visit("771700000000000", "new", false)})
	assert.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "connected as 01234567")
	assert.Contains(t, view, "771700000000000")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Empty(t, m.visits)
	assert.Equal(t, 1, m.tally.Visits)

	m.Update(DisconnectedMsg{Err: errors.New("connection reset")})
	assert.False(t, m.connected)
	assert.Contains(t, m.View(), "reconnecting")
}

func TestModel_KeepsRecentVisits(t *testing.T) {
	feed := NewFeedClient("ws://unused")
	defer feed.Close()

	m := NewApp(feed)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	for range maxVisits + 10 {
		m.Update(VisitMsg{Event: visit("1", "session_continued", false)})
	}

	assert.Len(t, m.visits, maxVisits)
	assert.Equal(t, maxVisits+10, m.tally.Visits)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestStream(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := live.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	router := gin.New()
	livehttp.RegisterRoutes(router.Group("/api/v1"), hub, livehttp.NewUpgrader(nil, false))

	srv := httptest.NewServer(router)
	defer srv.Close()

	feedURL, err := FeedURL("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/live", true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)

	go func() {
		done <- Stream(ctx, NewFeedClient(feedURL), &out)
	}()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "# connected as")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Write(context.Background(), visit("771700000000000", "new", true)))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "771700000000000")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}
