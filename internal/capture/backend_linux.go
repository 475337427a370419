//go:build linux

package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const inputByIDDir = "/dev/input/by-id"

// evdevBackend reads raw events from /dev/input. The user needs read access
// to the device nodes (usually membership of the "input" group).
type evdevBackend struct {
	dir string
}

// NewPlatformBackend returns the Linux evdev backend.
func NewPlatformBackend() Backend {
	return evdevBackend{dir: inputByIDDir}
}

func (b evdevBackend) devices(suffix string) []string {
	matches, _ := filepath.Glob(filepath.Join(b.dir, "*"+suffix))
	var readable []string
	for _, m := range matches {
		f, err := os.Open(m)
		if err != nil {
			continue
		}
		_ = f.Close()
		readable = append(readable, m)
	}
	return readable
}

func (b evdevBackend) Available() bool {
	return len(b.devices("-event-mouse")) > 0 && len(b.devices("-event-kbd")) > 0
}

func (b evdevBackend) Pointer(h PointerHandler) Listener {
	state := &pointerState{h: h}
	return &evdevListener{
		paths:  b.devices("-event-mouse"),
		handle: state.handle,
	}
}

func (b evdevBackend) Keyboard(h KeyHandler) Listener {
	return &evdevListener{
		paths:  b.devices("-event-kbd"),
		handle: func(ev inputEvent) { handleKey(h, ev) },
	}
}

// evdevListener reads every device in paths on its own goroutine. Stop closes
// the device files, which unblocks the readers.
type evdevListener struct {
	paths  []string
	handle func(inputEvent)

	mu     sync.Mutex
	files  []*os.File
	wg     sync.WaitGroup
	handMu sync.Mutex
}

func (l *evdevListener) Start() error {
	if len(l.paths) == 0 {
		return ErrBackendUnavailable
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.paths {
		f, err := os.Open(p)
		if err != nil {
			for _, opened := range l.files {
				_ = opened.Close()
			}
			l.files = nil
			return fmt.Errorf("opening %s: %w", p, err)
		}
		l.files = append(l.files, f)
	}

	for _, f := range l.files {
		l.wg.Add(1)
		go l.readLoop(f)
	}
	return nil
}

func (l *evdevListener) readLoop(f *os.File) {
	defer l.wg.Done()

	buf := make([]byte, inputEventSize)
	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			return
		}
		ev, err := decodeInputEvent(buf)
		if err != nil {
			continue
		}
		// Several devices may feed one pointerState.
		l.handMu.Lock()
		l.handle(ev)
		l.handMu.Unlock()
	}
}

func (l *evdevListener) Stop() error {
	l.mu.Lock()
	files := l.files
	l.files = nil
	l.mu.Unlock()

	var errs []error
	for _, f := range files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	l.wg.Wait()
	return errors.Join(errs...)
}
