package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"codeberg.org/cookieless/beacon/internal/events"
	live "codeberg.org/cookieless/beacon/internal/websocket"
)

// adds the bots filter to a live feed endpoint
func FeedURL(endpoint string, includeBots bool) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid live endpoint: %w", err)
	}

	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("invalid live endpoint: scheme must be ws or wss, got %q", u.Scheme)
	}

	if includeBots {
		q := u.Query()
		q.Set("bots", "true")
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// creates a new live feed client
func NewFeedClient(endpoint string) *FeedClient {
	return &FeedClient{
		endpoint: endpoint,
		incoming: make(chan any, 256),
		done:     make(chan struct{}),
	}
}

// dials the feed and starts reading it
func (c *FeedClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.connected = true

	go c.readPump(conn)

	return nil
}

// reads frames until the connection fails. the server may pack several
// queued messages into one frame, one per line
func (c *FeedClient) readPump(conn *websocket.Conn) {
	var cause error

	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.connected = false
		}
		c.mu.Unlock()

		conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
		c.emit(DisconnectedMsg{Err: cause})
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			cause = err
			return
		}

		for _, line := range bytes.Split(data, []byte{'\n'}) {
			msg, ok := decodeMessage(line)
			if ok {
				c.emit(msg)
			}
		}
	}
}

// turns a server message into a program message; unknown types are skipped
func decodeMessage(data []byte) (any, bool) {
	var msg live.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, false
	}

	switch msg.Type {
	case live.TypeWelcome:
		var payload live.WelcomePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, false
		}

		return ConnectedMsg{ClientID: payload.ClientID}, true

	case live.TypeVisit:
		var e events.Event
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			return nil, false
		}

		return VisitMsg{Event: e}, true

	default:
		return nil, false
	}
}

func (c *FeedClient) emit(msg any) {
	select {
	case c.incoming <- msg:
	case <-c.done:
	}
}

// blocks until the next feed message, nil once the client is closed
func (c *FeedClient) Next() any {
	select {
	case msg := <-c.incoming:
		return msg
	case <-c.done:
		return nil
	}
}

// returns whether the client is connected
func (c *FeedClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// closes the connection and releases anyone waiting in Next
func (c *FeedClient) Close() {
	c.once.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.WriteControl( //nolint:errcheck,gosec // best-effort close frame
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		c.conn.Close() //nolint:errcheck,gosec // G104: cleanup
		c.conn = nil
	}

	c.connected = false
}

// returns a tea.Cmd that connects to the feed
func (c *FeedClient) ConnectCmd() tea.Cmd {
	return func() tea.Msg {
		if err := c.Connect(); err != nil {
			return ConnectErrorMsg{Err: err}
		}

		// the welcome message arrives through WaitCmd
		return nil
	}
}

// returns a tea.Cmd delivering the next feed message to the program.
// exactly one should be outstanding at a time
func (c *FeedClient) WaitCmd() tea.Cmd {
	return func() tea.Msg {
		return c.Next()
	}
}
