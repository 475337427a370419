package capture

import (
	"encoding/binary"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rawEvent(typ, code uint16, value int32) []byte {
	b := make([]byte, inputEventSize)
	binary.LittleEndian.PutUint16(b[16:18], typ)
	binary.LittleEndian.PutUint16(b[18:20], code)
	binary.LittleEndian.PutUint32(b[20:24], uint32(value))
	return b
}

func TestDecodeInputEvent(t *testing.T) {
	ev, err := decodeInputEvent(rawEvent(evRel, relY, -7))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := inputEvent{Type: evRel, Code: relY, Value: -7}
	if diff := cmp.Diff(want, ev); diff != "" {
		t.Errorf("decoded event mismatch (-want +got):\n%s", diff)
	}

	if _, err := decodeInputEvent(make([]byte, 10)); err == nil {
		t.Error("short buffer should fail")
	}
}

func TestPointerState(t *testing.T) {
	var got []string
	h := PointerHandler{
		Move:   func(x, y int) { got = append(got, "move", strconv.Itoa(x), strconv.Itoa(y)) },
		Click:  func(x, y int, b string, p bool) { got = append(got, "click", b, strconv.FormatBool(p)) },
		Scroll: func(x, y, dx, dy int) { got = append(got, "scroll", strconv.Itoa(dx), strconv.Itoa(dy)) },
	}
	p := &pointerState{h: h}

	feed := []inputEvent{
		{evRel, relX, 5},
		{evRel, relY, 3},
		{evSyn, 0, 0},
		{evSyn, 0, 0}, // no motion, no move
		{evRel, relX, -2},
		{evSyn, 0, 0},
		{evKey, btnLeft, 1},
		{evKey, btnLeft, 2}, // autorepeat ignored for buttons
		{evKey, btnLeft, 0},
		{evRel, relWheel, -1},
		{evRel, relHWheel, 1},
		{evKey, 30, 1}, // keyboard code on pointer device
	}
	for _, ev := range feed {
		p.handle(ev)
	}

	want := []string{
		"move", "5", "3",
		"move", "3", "3",
		"click", "left", "true",
		"click", "left", "false",
		"scroll", "0", "-1",
		"scroll", "1", "0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pointer dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleKey(t *testing.T) {
	var got []string
	h := KeyHandler{
		Press:   func(k string) { got = append(got, "+"+k) },
		Release: func(k string) { got = append(got, "-"+k) },
	}

	for _, ev := range []inputEvent{
		{evKey, 30, 1},
		{evKey, 30, 2},
		{evKey, 30, 0},
		{evKey, btnRight, 1}, // mouse button on keyboard stream
		{evRel, relX, 1},
		{evKey, 240, 1},
	} {
		handleKey(h, ev)
	}

	want := []string{"+a", "+a", "-a", "+key_240"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("key dispatch mismatch (-want +got):\n%s", diff)
	}
}

