package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func NewApp(feed *FeedClient) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(colorGray)

	return &Model{
		feed:    feed,
		spinner: s,
		help:    renderHelp(80),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.feed.ConnectCmd(), m.feed.WaitCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.feed.Close()
			return m, tea.Quit

		case "?":
			m.showHelp = !m.showHelp
			return m, nil

		case "c":
			m.visits = nil
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.help = renderHelp(msg.Width - 4)
		return m, nil

	case ConnectedMsg:
		m.connected = true
		m.clientID = msg.ClientID
		m.err = nil
		return m, m.feed.WaitCmd()

	case VisitMsg:
		m.tally.Add(msg.Event)
		m.visits = append(m.visits, msg.Event)

		if len(m.visits) > maxVisits {
			m.visits = m.visits[len(m.visits)-maxVisits:]
		}

		m.refresh()
		return m, m.feed.WaitCmd()

	case DisconnectedMsg:
		m.connected = false
		m.err = msg.Err
		return m, tea.Batch(m.feed.WaitCmd(), scheduleReconnect(), m.spinner.Tick)

	case ConnectErrorMsg:
		m.err = msg.Err
		return m, scheduleReconnect()

	case reconnectMsg:
		return m, m.feed.ConnectCmd()

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m *Model) View() string {
	if !m.ready {
		return "\n  " + m.spinner.View() + " starting...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("BEACON LIVE"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(formatTally(m.tally))
	b.WriteString("\n")
	b.WriteString(borderStyle.Width(max(0, m.width-1)).Render(""))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.help)
	} else {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[q: quit] [c: clear] [?: help] [↑/↓: scroll]"))

	return b.String()
}

func (m *Model) statusLine() string {
	switch {
	case m.connected:
		return statusStyle.Render(fmt.Sprintf("connected as %s", shortID(m.clientID)))
	case m.err != nil:
		return m.spinner.View() + errorStyle.Render(fmt.Sprintf(" reconnecting: %v", m.err))
	default:
		return m.spinner.View() + infoStyle.Render(" connecting...")
	}
}

func (m *Model) resize() {
	height := max(1, m.height-headerHeight-footerHeight)

	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}

	m.refresh()
}

// re-renders the feed, keeping it pinned to the newest visit
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	if len(m.visits) == 0 {
		m.viewport.SetContent(infoStyle.Render("waiting for visitors..."))
		return
	}

	lines := make([]string, len(m.visits))
	for i, e := range m.visits {
		lines[i] = styledVisit(e)
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func scheduleReconnect() tea.Cmd {
	return tea.Tick(reconnectDelay, func(time.Time) tea.Msg {
		return reconnectMsg{}
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
