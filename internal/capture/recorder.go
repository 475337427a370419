// Package capture records global pointer and keyboard input to a JSONL log
// while a chosen window has focus. There is no playback.
package capture

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultGateInterval is how often the foreground window is polled.
const DefaultGateInterval = 150 * time.Millisecond

// Recorder owns one capture log at a time. The zero value is not usable; use
// NewRecorder.
type Recorder struct {
	backend      Backend
	probe        ForegroundProbe
	now          func() time.Time
	gateInterval time.Duration
	logger       *zap.Logger
	observer     func(sessionID string, e Event)
	onSession    func(SessionSummary)
	// gateSupported caches probe.Supported; platform probes look up an
	// executable on PATH.
	gateSupported bool

	mu            sync.Mutex
	session       uint64 // incremented by every Start; handlers carry theirs
	running       bool
	paused        bool
	cfg           Config
	sessionID     string
	startedAt     time.Time
	eventsWritten int
	hasLastMove   bool
	lastMove      time.Time
	lastWriteErr  error

	file *os.File
	buf  *bufio.Writer

	pointer  Listener
	keyboard Listener
	stopCh   chan struct{}
	gateDone chan struct{}
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithBackend overrides the platform input backend.
func WithBackend(b Backend) RecorderOption {
	return func(r *Recorder) { r.backend = b }
}

// WithForegroundProbe overrides the platform foreground-window probe.
func WithForegroundProbe(p ForegroundProbe) RecorderOption {
	return func(r *Recorder) { r.probe = p }
}

// WithClock sets the time source used for relative timestamps and throttling.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithGateInterval sets the foreground polling interval.
func WithGateInterval(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.gateInterval = d
		}
	}
}

// WithLogger sets the logger used for teardown and write failures.
func WithLogger(l *zap.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// WithObserver registers a callback invoked with the session id after every
// event written to the log. It runs outside the recorder lock.
func WithObserver(fn func(sessionID string, e Event)) RecorderOption {
	return func(r *Recorder) { r.observer = fn }
}

// WithSessionHook registers a callback invoked by Stop with the finished
// session's summary.
func WithSessionHook(fn func(SessionSummary)) RecorderOption {
	return func(r *Recorder) { r.onSession = fn }
}

// NewRecorder creates an idle Recorder using the platform backend and probe
// unless overridden.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		backend:      NewPlatformBackend(),
		probe:        NewPlatformProbe(),
		now:          time.Now,
		gateInterval: DefaultGateInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.gateSupported = r.probe.Supported()
	return r
}

// Available reports whether input capture works on this host.
func (r *Recorder) Available() bool {
	return r.backend.Available()
}

// SupportsForegroundGate reports whether recording can pause when the target
// window loses focus.
func (r *Recorder) SupportsForegroundGate() bool {
	return r.gateSupported
}

// Status returns a snapshot of the recorder state.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		SessionID:      r.sessionID,
		Running:        r.running,
		Paused:         r.paused,
		EventsWritten:  r.eventsWritten,
		Config:         r.cfg,
		ForegroundGate: r.gateSupported,
		LastWriteError: r.lastWriteErr,
		StartedAt:      r.startedAt,
	}
}

// Start opens cfg.OutputPath for appending and begins recording. It is a no-op
// when a session is already running.
func (r *Recorder) Start(cfg Config) error {
	if !r.backend.Available() {
		return ErrBackendUnavailable
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return ErrNoOutputPath
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeEvent
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("creating capture directory: %w", err)
	}
	f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("opening capture log: %w", err)
	}

	r.session++
	gen := r.session
	r.cfg = cfg
	r.file = f
	r.buf = bufio.NewWriter(f)
	r.sessionID = uuid.NewString()
	r.eventsWritten = 0
	r.startedAt = r.now()
	r.hasLastMove = false
	r.lastWriteErr = nil
	r.running = true
	r.paused = false
	r.stopCh = make(chan struct{})
	r.gateDone = make(chan struct{})

	// Handlers are bound to this session so a listener that is still
	// draining after Stop cannot write into a later session.
	r.pointer = r.backend.Pointer(PointerHandler{
		Move: func(x, y int) {
			r.record(gen, Event{Type: EventMouseMove, X: x, Y: y})
		},
		Click: func(x, y int, button string, pressed bool) {
			r.record(gen, Event{Type: EventMouseClick, X: x, Y: y, Button: button, Pressed: pressed})
		},
		Scroll: func(x, y, dx, dy int) {
			r.record(gen, Event{Type: EventMouseScroll, X: x, Y: y, DX: dx, DY: dy})
		},
	})
	r.keyboard = r.backend.Keyboard(KeyHandler{
		Press:   func(key string) { r.record(gen, Event{Type: EventKeyPress, Key: key}) },
		Release: func(key string) { r.record(gen, Event{Type: EventKeyRelease, Key: key}) },
	})
	pointer, keyboard := r.pointer, r.keyboard
	stopCh, gateDone := r.stopCh, r.gateDone
	sessionID := r.sessionID
	r.mu.Unlock()

	go r.gateLoop(gen, stopCh, gateDone)

	if err := pointer.Start(); err != nil {
		_ = r.stop(gen)
		return fmt.Errorf("starting pointer listener: %w", err)
	}
	if err := keyboard.Start(); err != nil {
		_ = r.stop(gen)
		return fmt.Errorf("starting keyboard listener: %w", err)
	}

	r.logger.Info("capture started",
		zap.String("session", sessionID),
		zap.String("output", cfg.OutputPath),
		zap.String("mode", string(cfg.Mode)),
		zap.Int("fixed_rate_ms", cfg.FixedRateMS),
	)
	return nil
}

// Stop ends the session, stops both listeners and closes the log. It is
// idempotent. Teardown errors are joined and returned; the recorder is idle
// afterwards regardless, and may be started again while teardown finishes.
func (r *Recorder) Stop() error {
	return r.stop(0)
}

// sessionTeardown is everything a stopping session owns once it has been
// detached from the recorder.
type sessionTeardown struct {
	pointer  Listener
	keyboard Listener
	gateDone chan struct{}
	file     *os.File
	buf      *bufio.Writer
	summary  SessionSummary
}

// stop ends session gen, or whichever session is running when gen is 0.
func (r *Recorder) stop(gen uint64) error {
	r.mu.Lock()
	if !r.running || (gen != 0 && r.session != gen) {
		r.mu.Unlock()
		return nil
	}
	td := sessionTeardown{
		pointer:  r.pointer,
		keyboard: r.keyboard,
		gateDone: r.gateDone,
		file:     r.file,
		buf:      r.buf,
		summary: SessionSummary{
			ID:            r.sessionID,
			Config:        r.cfg,
			StartedAt:     r.startedAt,
			EndedAt:       r.now(),
			EventsWritten: r.eventsWritten,
		},
	}
	r.running = false
	r.paused = false
	close(r.stopCh)
	r.pointer, r.keyboard = nil, nil
	r.file, r.buf = nil, nil
	r.mu.Unlock()

	err := td.close()
	if err != nil {
		r.logger.Warn("capture teardown incomplete", zap.String("session", td.summary.ID), zap.Error(err))
	}
	r.logger.Info("capture stopped",
		zap.String("session", td.summary.ID),
		zap.Int("events", td.summary.EventsWritten),
	)
	if r.onSession != nil {
		r.onSession(td.summary)
	}
	return err
}

// close stops the listeners and gate loop, then flushes and closes the log.
// Nothing writes to buf once the session is detached.
func (td sessionTeardown) close() error {
	var errs []error
	if td.pointer != nil {
		if err := td.pointer.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping pointer listener: %w", err))
		}
	}
	if td.keyboard != nil {
		if err := td.keyboard.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping keyboard listener: %w", err))
		}
	}
	<-td.gateDone

	if td.buf != nil {
		if err := td.buf.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flushing capture log: %w", err))
		}
	}
	if td.file != nil {
		if err := td.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing capture log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// gateLoop polls the foreground window and pauses recording while the target
// window is not focused.
func (r *Recorder) gateLoop(gen uint64, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.gateInterval)
	defer ticker.Stop()

	for {
		matched := r.targetFocused()

		r.mu.Lock()
		if !r.running || r.session != gen {
			r.mu.Unlock()
			return
		}
		r.paused = !matched
		r.mu.Unlock()

		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
	}
}

// targetFocused reports whether the configured window has focus. Without a
// supported probe, or when the probe fails, recording is never gated.
func (r *Recorder) targetFocused() bool {
	if !r.gateSupported {
		return true
	}

	r.mu.Lock()
	target := strings.ToLower(r.cfg.TargetWindow)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.gateInterval*4)
	defer cancel()

	title, err := r.probe.ForegroundTitle(ctx)
	if err != nil {
		return true
	}
	return strings.Contains(strings.ToLower(title), target)
}

// record timestamps e and appends it to the log if session gen is the one
// running, it is not paused, and (for pointer moves in fixed mode) e is
// outside the throttle window.
func (r *Recorder) record(gen uint64, e Event) {
	r.mu.Lock()
	if !r.running || r.session != gen || r.paused || r.buf == nil {
		r.mu.Unlock()
		return
	}

	now := r.now()
	if e.Type == EventMouseMove && r.cfg.Mode == ModeFixed {
		minGap := time.Duration(max(1, r.cfg.FixedRateMS)) * time.Millisecond
		if r.hasLastMove && now.Sub(r.lastMove) < minGap {
			r.mu.Unlock()
			return
		}
		r.hasLastMove = true
		r.lastMove = now
	}
	e.T = now.Sub(r.startedAt).Seconds()

	if err := r.writeLocked(e); err != nil {
		r.lastWriteErr = err
		r.mu.Unlock()
		r.logger.Error("capture write failed", zap.Error(err))
		return
	}
	r.eventsWritten++
	observer, sessionID := r.observer, r.sessionID
	r.mu.Unlock()

	if observer != nil {
		observer(sessionID, e)
	}
}

// writeLocked serialises e as one JSON line. Caller must hold r.mu.
func (r *Recorder) writeLocked(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if _, err := r.buf.Write(data); err != nil {
		return err
	}
	return r.buf.WriteByte('\n')
}
