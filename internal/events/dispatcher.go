package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/cookieless/beacon/internal/logger"
	"golang.org/x/time/rate"
)

const (
	// time a single sink gets to accept one event
	defaultWriteTimeout = 5 * time.Second

	// minimum spacing of "queue full" warnings
	dropLogInterval = 10 * time.Second
)

// fans visitor events out to sinks on a single background worker.
// Publish never blocks the request that produced the event
type Dispatcher struct {
	sinks        []Sink
	queue        chan Event
	done         chan struct{}
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64

	dropLog rate.Sometimes
}

// creates a dispatcher with a queue of the given size and starts its worker
func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		sinks:        sinks,
		queue:        make(chan Event, buffer),
		done:         make(chan struct{}),
		writeTimeout: defaultWriteTimeout,
		dropLog:      rate.Sometimes{First: 1, Interval: dropLogInterval},
	}

	go d.run()

	return d
}

// enqueues an event, dropping it when the queue is full or the dispatcher
// is closed. reports whether the event was accepted
func (d *Dispatcher) Publish(e Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.queue <- e:
		return true
	default:
		total := d.dropped.Add(1)
		d.dropLog.Do(func() {
			logger.Warn("visitor event queue full, dropping events",
				"queue_size", cap(d.queue),
				"dropped_total", total,
			)
		})
		return false
	}
}

// returns the names of the configured sinks
func (d *Dispatcher) SinkNames() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}

	return names
}

// counters since start
type Stats struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
	Queued    int    `json:"queued"`
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Failed:    d.failed.Load(),
		Queued:    len(d.queue),
	}
}

// stops accepting events, drains the queue and closes every sink.
// returns ctx.Err() if draining does not finish in time
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}

	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return fmt.Errorf("failed to drain visitor events: %w", ctx.Err())
	}

	var errs []error
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s sink: %w", s.Name(), err))
		}
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
		err := s.Write(ctx, e)
		cancel()

		if err != nil {
			d.failed.Add(1)
			logger.ErrorErr(err, "failed to deliver visitor event",
				"sink", s.Name(),
				"event_id", e.EventID,
				"visitor_id", e.VisitorID,
			)
			continue
		}

		d.delivered.Add(1)
	}
}
