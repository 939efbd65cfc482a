package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"codeberg.org/cookieless/beacon/internal/tui"
)

func main() {
	defaultEndpoint := os.Getenv("BEACON_LIVE_ENDPOINT")
	if defaultEndpoint == "" {
		defaultEndpoint = "ws://localhost:7123/api/v1/live"
	}

	endpoint := flag.String("endpoint", defaultEndpoint, "live feed websocket endpoint")
	bots := flag.Bool("bots", false, "include visits scored as bot traffic")
	flag.Parse()

	feedURL, err := tui.FeedURL(*endpoint, *bots)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	feed := tui.NewFeedClient(feedURL)

	// piped output gets plain lines instead of the dashboard
	if !term.IsTerminal(os.Stdout.Fd()) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := tui.Stream(ctx, feed, os.Stdout); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "error streaming live feed: %v\n", err)
			os.Exit(1)
		}

		return
	}

	p := tea.NewProgram(tui.NewApp(feed), tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running beacon live: %v\n", err)
		os.Exit(1)
	}
}
