package events

import "github.com/nixlim/jarviz/internal/capture"

// FormattedEvent holds a display-ready capture event.
type FormattedEvent struct {
	SessionID string
	Type      capture.EventType
	T         float64 // seconds since the session started
	Formatted string
}
