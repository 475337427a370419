package capture

import (
	"context"
	"errors"
)

// PointerHandler receives pointer events from a Listener. Nil callbacks are
// skipped.
type PointerHandler struct {
	Move   func(x, y int)
	Click  func(x, y int, button string, pressed bool)
	Scroll func(x, y, dx, dy int)
}

// KeyHandler receives keyboard events from a Listener.
type KeyHandler struct {
	Press   func(key string)
	Release func(key string)
}

// Listener delivers input events on its own goroutine between Start and Stop.
type Listener interface {
	Start() error
	Stop() error
}

// Backend creates global input listeners.
type Backend interface {
	// Available reports whether both pointer and keyboard input can be read.
	Available() bool
	Pointer(h PointerHandler) Listener
	Keyboard(h KeyHandler) Listener
}

// ForegroundProbe reports the title of the window that currently has focus.
type ForegroundProbe interface {
	// Supported is false when this platform cannot inspect the foreground
	// window; the recorder then disables gating.
	Supported() bool
	ForegroundTitle(ctx context.Context) (string, error)
}

var errProbeUnsupported = errors.New("foreground window inspection is not supported on this platform")

// unsupportedProbe is used where no foreground inspection exists.
type unsupportedProbe struct{}

func (unsupportedProbe) Supported() bool { return false }

func (unsupportedProbe) ForegroundTitle(context.Context) (string, error) {
	return "", errProbeUnsupported
}

// NoForegroundProbe returns a probe that disables foreground gating.
func NoForegroundProbe() ForegroundProbe { return unsupportedProbe{} }

// unavailableBackend is used where no input hook exists.
type unavailableBackend struct{}

func (unavailableBackend) Available() bool { return false }

func (unavailableBackend) Pointer(PointerHandler) Listener { return nopListener{} }

func (unavailableBackend) Keyboard(KeyHandler) Listener { return nopListener{} }

type nopListener struct{}

func (nopListener) Start() error { return ErrBackendUnavailable }
func (nopListener) Stop() error  { return nil }
