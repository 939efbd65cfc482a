package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codeberg.org/cookieless/beacon/internal/events"
	"codeberg.org/cookieless/beacon/internal/logger"
)

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[string]*Client),
		ipConnections: make(map[string]int),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		broadcast:     make(chan broadcast, 256),
		shutdown:      make(chan struct{}),
		stopped:       make(chan struct{}),
	}
}

// starts the hub's main loop
func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.fanOut(msg)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	logger.Info("live client registered",
		"client_id", client.ID,
		"ip", client.IPAddress,
		"clients", total,
	)

	welcome, err := NewMessage(TypeWelcome, WelcomePayload{
		ClientID:    client.ID,
		IncludeBots: client.IncludeBots,
	})
	if err != nil {
		return
	}

	if err := client.Send(welcome); err != nil {
		logger.ErrorErr(err, "failed to send welcome", "client_id", client.ID)
	}
}

// removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client.ID]; !exists {
		return
	}

	delete(h.clients, client.ID)
	client.Close()

	h.untrackIP(client.IPAddress)

	logger.Info("live client unregistered",
		"client_id", client.ID,
		"clients", len(h.clients),
	)
}

func (h *Hub) fanOut(msg broadcast) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		if msg.bot && !client.IncludeBots {
			continue
		}

		if err := client.sendRaw(msg.data); err != nil {
			// slow or gone, drop it; its read pump will unregister again harmlessly
			delete(h.clients, id)
			h.untrackIP(client.IPAddress)

			logger.Warn("dropped slow live client", "client_id", id)
		}
	}
}

// publishes a visitor event to every connected dashboard.
// implements events.Sink
func (h *Hub) Write(ctx context.Context, e events.Event) error {
	select {
	case <-h.shutdown:
		return ErrHubClosed
	default:
	}

	msg, err := NewMessage(TypeVisit, e)
	if err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal live message: %w", err)
	}

	select {
	case h.broadcast <- broadcast{data: data, bot: e.Bot}:
		return nil
	case <-h.shutdown:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Name() string { return "live" }

// stops the hub; implements events.Sink
func (h *Hub) Close() error {
	h.Shutdown()
	return nil
}

// returns the number of connected dashboards
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// checks connection limits before a new client is upgraded and reserves
// a slot for its IP. callers must UntrackIP if the upgrade fails
func (h *Hub) Admit(ipAddress string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.shutdown:
		return ErrHubClosed
	default:
	}

	if len(h.clients) >= maxConnections {
		return ErrTooManyClients
	}

	if ipAddress != "" && h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return ErrTooManyClients
	}

	if ipAddress != "" {
		h.ipConnections[ipAddress]++
	}

	return nil
}

// releases an IP slot reserved by Admit
func (h *Hub) UntrackIP(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.untrackIP(ipAddress)
}

func (h *Hub) untrackIP(ipAddress string) {
	if ipAddress == "" {
		return
	}

	h.ipConnections[ipAddress]--
	if h.ipConnections[ipAddress] <= 0 {
		delete(h.ipConnections, ipAddress)
	}
}

// stops the hub loop and closes every connection. safe to call more than once
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

// blocks until Run has returned or the timeout elapses
func (h *Hub) Wait(timeout time.Duration) bool {
	select {
	case <-h.stopped:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing live feed connections", "clients", len(h.clients))

	shutdownMsg, err := NewMessage(TypeServerShutdown, ServerShutdownPayload{
		Reason: "server is shutting down",
	})

	for id, client := range h.clients {
		if err == nil {
			client.Send(shutdownMsg) //nolint:errcheck,gosec // best-effort notification
		}

		client.Close()
		delete(h.clients, id)
	}

	h.ipConnections = make(map[string]int)
}
