package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/cookieless/beacon/internal/token"
	"codeberg.org/cookieless/beacon/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// records every event it receives
type recordingSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// blocks inside Write until released
type blockingSink struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingSink() *blockingSink {
	return &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Write(ctx context.Context, _ Event) error {
	s.once.Do(func() { close(s.started) })

	select {
	case <-s.release:
	case <-ctx.Done():
	}

	return nil
}

func (s *blockingSink) Close() error { return nil }

func testEvent(id string) Event {
	visitor := tracker.Visitor{
		State:   token.State{ID: id, LastSeen: 1429043947680, Session: 1},
		Token:   id + ".1429043947680.1",
		Outcome: tracker.OutcomeNew,
		Changed: true,
	}

	return NewEvent(visitor, RequestMeta{Path: "/i.js"}, time.Now())
}

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	d := NewDispatcher(16, a, b)

	for _, id := range []string{"1", "2", "3"} {
		assert.True(t, d.Publish(testEvent(id)))
	}

	require.NoError(t, d.Close(context.Background()))

	for _, sink := range []*recordingSink{a, b} {
		got := sink.received()
		require.Len(t, got, 3)
		assert.Equal(t, "1", got[0].VisitorID)
		assert.Equal(t, "3", got[2].VisitorID)
		assert.True(t, sink.closed)
	}

	stats := d.Stats()
	assert.Equal(t, uint64(6), stats.Delivered)
	assert.Equal(t, uint64(0), stats.Dropped)
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	blocking := newBlockingSink()
	d := NewDispatcher(1, blocking)

	require.True(t, d.Publish(testEvent("first")))
	<-blocking.started

	// the worker is stuck on the first event, the queue has room for one more
	assert.True(t, d.Publish(testEvent("second")))

	done := make(chan bool)
	go func() { done <- d.Publish(testEvent("third")) }()

	select {
	case accepted := <-done:
		assert.False(t, accepted, "full queue should drop the event")
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	assert.Equal(t, uint64(1), d.Stats().Dropped)

	close(blocking.release)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	d := NewDispatcher(4)

	require.NoError(t, d.Close(context.Background()))

	assert.False(t, d.Publish(testEvent("late")))
	assert.ErrorIs(t, d.Close(context.Background()), ErrDispatcherClosed)
}

func TestDispatcher_CloseRespectsContext(t *testing.T) {
	blocking := newBlockingSink()
	d := NewDispatcher(4, blocking)
	defer close(blocking.release)

	d.Publish(testEvent("stuck"))
	<-blocking.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatcher_SinkFailureDoesNotStopOthers(t *testing.T) {
	failing := &recordingSink{err: errors.New("boom")}
	healthy := &recordingSink{}
	d := NewDispatcher(4, failing, healthy)

	d.Publish(testEvent("1"))
	require.NoError(t, d.Close(context.Background()))

	assert.Len(t, healthy.received(), 1)
	assert.Equal(t, uint64(1), d.Stats().Failed)
	assert.Equal(t, uint64(1), d.Stats().Delivered)
}

func TestDispatcher_SinkNames(t *testing.T) {
	d := NewDispatcher(1, NewLogSink(nil), &recordingSink{})
	defer d.Close(context.Background()) //nolint:errcheck // test cleanup

	assert.Equal(t, []string{"log", "recording"}, d.SinkNames())
}

func TestNewEvent(t *testing.T) {
	visitor := tracker.Visitor{
		State:   token.State{ID: "751429049947678", LastSeen: 1429045747680, Session: 3},
		Token:   "751429049947678.1429045747680.3",
		Outcome: tracker.OutcomeRenewed,
		Changed: true,
	}
	at := time.Date(2015, 4, 14, 20, 49, 7, 0, time.FixedZone("X", 3600))

	e := NewEvent(visitor, RequestMeta{ClientIP: "10.0.0.1", BotScore: 70, Bot: true}, at)

	assert.Len(t, e.EventID, 26, "ULID string length")
	assert.Equal(t, "751429049947678", e.VisitorID)
	assert.Equal(t, int64(3), e.Session)
	assert.Equal(t, "session_renewed", e.Outcome)
	assert.Equal(t, 200, e.Status)
	assert.True(t, e.Bot)
	assert.Equal(t, time.UTC, e.ReceivedAt.Location())
	assert.NotEqual(t, e.EventID, NewEvent(visitor, RequestMeta{}, at).EventID)
}
