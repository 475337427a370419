package tui

import (
	"context"
	"image"
	"image/color"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/capture"
	"github.com/nixlim/jarviz/internal/grab"
	"github.com/nixlim/jarviz/internal/settings"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyAlt(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// typeInto sends s to the page one rune at a time.
func typeInto(p Page, s string) {
	for _, r := range s {
		p.Update(keyRunes(string(r)))
	}
}

// drive runs cmd and feeds each resulting message back to p until a
// NoticeMsg arrives or the chain ends. It returns the final notice, if any.
func drive(p Page, cmd tea.Cmd) *NoticeMsg {
	for i := 0; cmd != nil && i < 10000; i++ {
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			return nil
		case NoticeMsg:
			return &msg
		case tea.BatchMsg:
			var last *NoticeMsg
			for _, c := range msg {
				if n := drive(p, c); n != nil {
					last = n
				}
			}
			return last
		}
		cmd = p.Update(msg)
	}
	return nil
}

// fakeListener records the handlers it was given.
type fakeListener struct {
	started bool
}

func (l *fakeListener) Start() error { l.started = true; return nil }
func (l *fakeListener) Stop() error  { l.started = false; return nil }

type fakeBackend struct {
	available bool

	mu      sync.Mutex
	pointer capture.PointerHandler
	keys    capture.KeyHandler
}

func (b *fakeBackend) Available() bool { return b.available }

func (b *fakeBackend) Pointer(h capture.PointerHandler) capture.Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pointer = h
	return &fakeListener{}
}

func (b *fakeBackend) Keyboard(h capture.KeyHandler) capture.Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = h
	return &fakeListener{}
}

func (b *fakeBackend) move(x, y int) {
	b.mu.Lock()
	h := b.pointer
	b.mu.Unlock()
	h.Move(x, y)
}

func (b *fakeBackend) press(k string) {
	b.mu.Lock()
	h := b.keys
	b.mu.Unlock()
	h.Press(k)
}

type fakeGrabber struct {
	available bool
	err       error
	calls     int
}

func (g *fakeGrabber) Available() bool { return g.available }

func (g *fakeGrabber) Grab(_ context.Context, r grab.Region) (image.Image, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img, nil
}

type fakeOverlay struct {
	on  bool
	err error
}

func (o *fakeOverlay) Enabled() bool { return o.on }

func (o *fakeOverlay) Toggle() (bool, error) {
	if o.err != nil {
		return o.on, o.err
	}
	o.on = !o.on
	return o.on, nil
}

func testTheme() Theme {
	return NewTheme(settings.Defaults())
}
