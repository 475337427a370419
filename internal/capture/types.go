package capture

import (
	"errors"
	"time"
)

// Mode selects how pointer-move events are sampled.
type Mode string

const (
	// ModeEvent logs every pointer move the backend reports.
	ModeEvent Mode = "event"
	// ModeFixed drops pointer moves arriving faster than FixedRateMS.
	ModeFixed Mode = "fixed"
)

// ParseMode converts a user-supplied mode string, defaulting to ModeEvent.
func ParseMode(s string) Mode {
	if Mode(s) == ModeFixed {
		return ModeFixed
	}
	return ModeEvent
}

// Config describes one capture session. It is fixed for the session's lifetime.
type Config struct {
	// TargetWindow is matched case-insensitively against the foreground
	// window title. Recording pauses while it does not match.
	TargetWindow string
	Mode         Mode
	FixedRateMS  int
	OutputPath   string
}

// EventType tags a captured input event.
type EventType string

const (
	EventMouseMove   EventType = "mouse_move"
	EventMouseClick  EventType = "mouse_click"
	EventMouseScroll EventType = "mouse_scroll"
	EventKeyPress    EventType = "key_press"
	EventKeyRelease  EventType = "key_release"
)

// Status is a point-in-time snapshot of the recorder.
type Status struct {
	SessionID      string
	Running        bool
	Paused         bool
	EventsWritten  int
	Config         Config
	ForegroundGate bool
	LastWriteError error
	StartedAt      time.Time
}

// SessionSummary describes a finished capture session.
type SessionSummary struct {
	ID            string
	Config        Config
	StartedAt     time.Time
	EndedAt       time.Time
	EventsWritten int
}

var (
	// ErrBackendUnavailable is returned by Start when no input backend can
	// deliver pointer and keyboard events on this host.
	ErrBackendUnavailable = errors.New("input capture backend is not available on this system")

	// ErrNoOutputPath is returned by Start when the config has no output path.
	ErrNoOutputPath = errors.New("capture output path is empty")
)
