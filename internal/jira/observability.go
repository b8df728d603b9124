package jira

import (
	charmlog "github.com/charmbracelet/log"
)

// CallEvent records metadata about a single Jira API call.
type CallEvent struct {
	Method    string
	Path      string
	Status    int
	LatencyMs int64
	Attempts  int
	Err       error
}

// Observer receives events about completed API calls.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// LogObserver writes API call events through a structured logger.
type LogObserver struct {
	log *charmlog.Logger
}

// NewLogObserver creates an Observer that logs call events.
func NewLogObserver(logger *charmlog.Logger) *LogObserver {
	return &LogObserver{log: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	fields := []any{
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
	}
	if event.Err != nil {
		o.log.Warn("jira call failed", append(fields, "err", event.Err)...)
		return
	}
	o.log.Debug("jira call", fields...)
}
