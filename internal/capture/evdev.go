package capture

import (
	"encoding/binary"
	"fmt"
)

// Linux input_event layout on 64-bit hosts: struct timeval (16 bytes),
// __u16 type, __u16 code, __s32 value.
const inputEventSize = 24

const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	relX      = 0x00
	relY      = 0x01
	relHWheel = 0x06
	relWheel  = 0x08

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
	btnSide   = 0x113
	btnExtra  = 0x114
)

type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

func decodeInputEvent(b []byte) (inputEvent, error) {
	if len(b) < inputEventSize {
		return inputEvent{}, fmt.Errorf("short input_event: %d bytes", len(b))
	}
	return inputEvent{
		Type:  binary.LittleEndian.Uint16(b[16:18]),
		Code:  binary.LittleEndian.Uint16(b[18:20]),
		Value: int32(binary.LittleEndian.Uint32(b[20:24])),
	}, nil
}

var buttonNames = map[uint16]string{
	btnLeft:   "left",
	btnRight:  "right",
	btnMiddle: "middle",
	btnSide:   "x1",
	btnExtra:  "x2",
}

// keyNames covers the keys most often seen in recordings; anything else is
// logged by scancode.
var keyNames = map[uint16]string{
	1: "esc", 14: "backspace", 15: "tab", 28: "enter", 29: "ctrl_l", 42: "shift_l",
	54: "shift_r", 56: "alt_l", 57: "space", 58: "caps_lock", 97: "ctrl_r", 100: "alt_r",
	103: "up", 105: "left", 106: "right", 108: "down", 125: "cmd",
	2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	16: "q", 17: "w", 18: "e", 19: "r", 20: "t", 21: "y", 22: "u", 23: "i", 24: "o", 25: "p",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g", 35: "h", 36: "j", 37: "k", 38: "l",
	44: "z", 45: "x", 46: "c", 47: "v", 48: "b", 49: "n", 50: "m",
	59: "f1", 60: "f2", 61: "f3", 62: "f4", 63: "f5", 64: "f6", 65: "f7", 66: "f8",
	67: "f9", 68: "f10", 87: "f11", 88: "f12",
}

func keyName(code uint16) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return fmt.Sprintf("key_%d", code)
}

// pointerState turns relative evdev motion into absolute-looking coordinates
// and dispatches to a PointerHandler on each SYN_REPORT.
type pointerState struct {
	h      PointerHandler
	x, y   int
	dx, dy int
	moved  bool
}

func (p *pointerState) handle(ev inputEvent) {
	switch ev.Type {
	case evRel:
		switch ev.Code {
		case relX:
			p.dx += int(ev.Value)
			p.moved = true
		case relY:
			p.dy += int(ev.Value)
			p.moved = true
		case relWheel:
			if p.h.Scroll != nil {
				p.h.Scroll(p.x, p.y, 0, int(ev.Value))
			}
		case relHWheel:
			if p.h.Scroll != nil {
				p.h.Scroll(p.x, p.y, int(ev.Value), 0)
			}
		}
	case evKey:
		name, ok := buttonNames[ev.Code]
		if ok && ev.Value != 2 && p.h.Click != nil {
			p.h.Click(p.x, p.y, name, ev.Value == 1)
		}
	case evSyn:
		if p.moved {
			p.x += p.dx
			p.y += p.dy
			p.dx, p.dy = 0, 0
			p.moved = false
			if p.h.Move != nil {
				p.h.Move(p.x, p.y)
			}
		}
	}
}

// handleKey dispatches a keyboard evdev event. Autorepeat (value 2) is
// reported as another press.
func handleKey(h KeyHandler, ev inputEvent) {
	if ev.Type != evKey {
		return
	}
	if _, isButton := buttonNames[ev.Code]; isButton {
		return
	}
	switch ev.Value {
	case 0:
		if h.Release != nil {
			h.Release(keyName(ev.Code))
		}
	case 1, 2:
		if h.Press != nil {
			h.Press(keyName(ev.Code))
		}
	}
}
