package server

import (
	"time"

	"github.com/Shoji0121/voice-remove/internal/wizard"
)

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

// StateChangedEvent carries a full session snapshot; clients re-render
// from it rather than patching.
type StateChangedEvent struct {
	Event
	State wizard.State `json:"state"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}
