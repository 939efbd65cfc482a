package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/gorilla/websocket"

	"codeberg.org/cookieless/beacon/internal/events"
)

const (
	// visits kept on screen; older ones scroll out
	maxVisits = 500

	reconnectDelay = 2 * time.Second
	writeWait      = 10 * time.Second

	// rows taken by the header and footer around the feed
	headerHeight = 5
	footerHeight = 2
)

// main TUI application model
type Model struct {
	feed      *FeedClient
	width     int
	height    int
	connected bool
	clientID  string
	err       error
	visits    []events.Event
	tally     Tally
	viewport  viewport.Model
	spinner   spinner.Model
	help      string
	showHelp  bool
	ready     bool
}

// running counts over every visit seen since start
type Tally struct {
	Visits    int
	New       int
	Continued int
	Renewed   int
	Bots      int

	visitors map[string]struct{}
}

// subscribes to the live visitor feed of a beacon server
type FeedClient struct {
	endpoint string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	// carries ConnectedMsg, VisitMsg and DisconnectedMsg to the program
	incoming chan any
	done     chan struct{}
	once     sync.Once
}

// sent when the server welcomed the connection
type ConnectedMsg struct {
	ClientID string
}

// sent when dialing the feed failed
type ConnectErrorMsg struct {
	Err error
}

// sent for every visitor event received
type VisitMsg struct {
	Event events.Event
}

// sent when an established connection dropped
type DisconnectedMsg struct {
	Err error
}

type reconnectMsg struct{}
