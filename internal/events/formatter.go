// Package events formats and buffers capture events for the live tail shown
// while a recording is running.
package events

import (
	"fmt"

	"github.com/nixlim/jarviz/internal/capture"
)

// Format converts a captured event into one display line:
//   - mouse_move:   "[session]   1.250s move   (x, y)"
//   - mouse_click:  "[session]   1.250s left   down (x, y)"
//   - mouse_scroll: "[session]   1.250s scroll dx,dy (x, y)"
//   - key_*:        "[session]   1.250s key    w down"
func Format(sessionID string, e capture.Event) FormattedEvent {
	fe := FormattedEvent{
		SessionID: sessionID,
		Type:      e.Type,
		T:         e.T,
	}
	prefix := fmt.Sprintf("[%s] %8.3fs", shortID(sessionID), e.T)

	switch e.Type {
	case capture.EventMouseMove:
		fe.Formatted = fmt.Sprintf("%s move   (%d, %d)", prefix, e.X, e.Y)
	case capture.EventMouseClick:
		fe.Formatted = fmt.Sprintf("%s %-6s %s (%d, %d)", prefix, e.Button, upDown(e.Pressed), e.X, e.Y)
	case capture.EventMouseScroll:
		fe.Formatted = fmt.Sprintf("%s scroll %+d,%+d (%d, %d)", prefix, e.DX, e.DY, e.X, e.Y)
	case capture.EventKeyPress:
		fe.Formatted = fmt.Sprintf("%s key    %s down", prefix, e.Key)
	case capture.EventKeyRelease:
		fe.Formatted = fmt.Sprintf("%s key    %s up", prefix, e.Key)
	default:
		fe.Formatted = fmt.Sprintf("%s %s", prefix, e.Type)
	}
	return fe
}

func upDown(pressed bool) string {
	if pressed {
		return "down"
	}
	return "up"
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
