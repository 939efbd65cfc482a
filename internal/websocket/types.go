package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// message type constants for the live feed
const (
	// carries one visitor event
	TypeVisit = "visit"

	// is sent to a dashboard right after it connects
	TypeWelcome = "welcome"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// dashboards only listen, anything larger than a close frame is noise
	maxMessageSize = 1024

	// outbound messages buffered per client before it is dropped as too slow
	sendBufferSize = 256
)

// hub connection limit constants
const (
	maxConnections      = 500
	maxConnectionsPerIP = 10
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrHubClosed        = errors.New("live hub closed")
	ErrTooManyClients   = errors.New("too many live feed connections")
)

// represents a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// is sent to a dashboard when it connects
type WelcomePayload struct {
	ClientID    string `json:"client_id"`
	IncludeBots bool   `json:"include_bots"`
}

// contains the reason for a server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// is a message ready to fan out; Bot lets clients filter automated traffic
type broadcast struct {
	data []byte
	bot  bool
}

// manages all live feed connections
type Hub struct {
	clients       map[string]*Client
	ipConnections map[string]int

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan broadcast

	shutdown     chan struct{}
	shutdownOnce sync.Once
	stopped      chan struct{}

	mu sync.RWMutex
}

// represents one connected dashboard
type Client struct {
	ID          string
	IPAddress   string
	IncludeBots bool

	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	mu     sync.RWMutex
	closed bool
}
