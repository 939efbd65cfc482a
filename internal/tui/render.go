package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"codeberg.org/cookieless/beacon/internal/events"
	"codeberg.org/cookieless/beacon/internal/tracker"
)

// counts a visit
func (t *Tally) Add(e events.Event) {
	if t.visitors == nil {
		t.visitors = make(map[string]struct{})
	}

	t.Visits++
	t.visitors[e.VisitorID] = struct{}{}

	switch e.Outcome {
	case tracker.OutcomeNew.String():
		t.New++
	case tracker.OutcomeContinued.String():
		t.Continued++
	case tracker.OutcomeRenewed.String():
		t.Renewed++
	}

	if e.Bot {
		t.Bots++
	}
}

// returns the number of distinct visitor ids seen
func (t *Tally) Unique() int {
	return len(t.visitors)
}

// renders one visit as a plain text line
func FormatVisit(e events.Event) string {
	line := fmt.Sprintf("%s  %-17s  %-20s  s%-4d %d  %s",
		e.ReceivedAt.Local().Format("15:04:05"),
		e.Outcome,
		e.VisitorID,
		e.Session,
		e.Status,
		e.Path,
	)

	if e.Bot {
		line += fmt.Sprintf("  bot(%d)", e.BotScore)
	}

	return line
}

// renders one visit with colors for the feed
func styledVisit(e events.Event) string {
	line := FormatVisit(e)

	switch {
	case e.Bot:
		return botStyle.Render(line)
	case e.Outcome == tracker.OutcomeNew.String():
		return outcomeNewStyle.Render(line)
	case e.Outcome == tracker.OutcomeRenewed.String():
		return outcomeRenewedStyle.Render(line)
	default:
		return outcomeContinuedStyle.Render(line)
	}
}

// renders the counters line
func formatTally(t Tally) string {
	stat := func(label string, n int) string {
		return statLabelStyle.Render(label+" ") + statValueStyle.Render(fmt.Sprint(n))
	}

	return strings.Join([]string{
		stat("visits", t.Visits),
		stat("visitors", t.Unique()),
		stat("new", t.New),
		stat("renewed", t.Renewed),
		stat("continued", t.Continued),
		stat("bots", t.Bots),
	}, "   ")
}

// renders the help page, falling back to the raw markdown when the
// terminal renderer cannot be built
func renderHelp(width int) string {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}

	return out
}
