package health

import "codeberg.org/cookieless/beacon/internal/events"

// reports on the visitor event pipeline; *events.Dispatcher satisfies it
type EventReporter interface {
	Stats() events.Stats
	SinkNames() []string
}

type Response struct {
	Status  string        `json:"status"`
	Service string        `json:"service"`
	Version string        `json:"version,omitempty"`
	Sinks   []string      `json:"sinks,omitempty"`
	Events  *events.Stats `json:"events,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
