package tui

import (
	"context"
	"fmt"
	"io"
)

// prints the feed as plain lines until ctx ends or the connection drops.
// used when output is not a terminal
func Stream(ctx context.Context, feed *FeedClient, w io.Writer) error {
	if err := feed.Connect(); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		feed.Close()
	}()

	for {
		switch msg := feed.Next().(type) {
		case nil:
			return ctx.Err()

		case ConnectedMsg:
			fmt.Fprintf(w, "# connected as %s\n", msg.ClientID) //nolint:errcheck // best-effort output

		case VisitMsg:
			if _, err := fmt.Fprintln(w, FormatVisit(msg.Event)); err != nil {
				return err
			}

		case DisconnectedMsg:
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("live feed disconnected: %w", msg.Err)
		}
	}
}
