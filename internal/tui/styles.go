package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorGreen     = lipgloss.Color("#00FF00")
	colorYellow    = lipgloss.Color("#FFFF00")
	colorRed       = lipgloss.Color("#FF0000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	statValueStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	outcomeNewStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	outcomeRenewedStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	outcomeContinuedStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	botStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorDarkGray).
			BorderTop(false).
			BorderLeft(false).
			BorderRight(false).
			BorderBottom(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true)
)

const helpMarkdown = `# beacon live

Every line is one beacon hit, newest at the bottom.

| column | meaning |
|---|---|
| time | when the server received the hit |
| outcome | **new** visitor, **renewed** session or **continued** session |
| visitor | visitor id carried in the token |
| s | session number |
| status | 200 when a new token was issued, 304 otherwise |
| bot | score from the request heuristics, shown when flagged |

Keys: ` + "`q`" + ` quit, ` + "`c`" + ` clear, ` + "`?`" + ` toggle this help, arrows and pgup/pgdn scroll.
`
