package capture

import "encoding/json"

// Event is a single captured input event. Which fields are meaningful depends
// on Type; MarshalJSON only emits the fields that belong to the type.
type Event struct {
	T       float64   `json:"t"`
	Type    EventType `json:"type"`
	X       int       `json:"x,omitempty"`
	Y       int       `json:"y,omitempty"`
	Button  string    `json:"button,omitempty"`
	Pressed bool      `json:"pressed,omitempty"`
	DX      int       `json:"dx,omitempty"`
	DY      int       `json:"dy,omitempty"`
	Key     string    `json:"key,omitempty"`
}

type moveJSON struct {
	T    float64   `json:"t"`
	Type EventType `json:"type"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
}

type clickJSON struct {
	T       float64   `json:"t"`
	Type    EventType `json:"type"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Button  string    `json:"button"`
	Pressed bool      `json:"pressed"`
}

type scrollJSON struct {
	T    float64   `json:"t"`
	Type EventType `json:"type"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
	DX   int       `json:"dx"`
	DY   int       `json:"dy"`
}

type keyJSON struct {
	T    float64   `json:"t"`
	Type EventType `json:"type"`
	Key  string    `json:"key"`
}

// MarshalJSON writes the per-type record, keeping zero coordinates that a
// plain omitempty encoding would drop.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventMouseMove:
		return json.Marshal(moveJSON{T: e.T, Type: e.Type, X: e.X, Y: e.Y})
	case EventMouseClick:
		return json.Marshal(clickJSON{T: e.T, Type: e.Type, X: e.X, Y: e.Y, Button: e.Button, Pressed: e.Pressed})
	case EventMouseScroll:
		return json.Marshal(scrollJSON{T: e.T, Type: e.Type, X: e.X, Y: e.Y, DX: e.DX, DY: e.DY})
	case EventKeyPress, EventKeyRelease:
		return json.Marshal(keyJSON{T: e.T, Type: e.Type, Key: e.Key})
	default:
		type plain Event
		return json.Marshal(plain(e))
	}
}
