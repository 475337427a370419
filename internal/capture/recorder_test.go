package capture

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeListener struct {
	startErr error
	stopErr  error
	started  bool
	stopped  bool
}

func (l *fakeListener) Start() error {
	l.started = true
	return l.startErr
}

func (l *fakeListener) Stop() error {
	l.stopped = true
	return l.stopErr
}

// fakeBackend hands the recorder's handlers back to the test so events can be
// injected synchronously.
type fakeBackend struct {
	available bool
	pointerH  PointerHandler
	keyH      KeyHandler
	pointer   *fakeListener
	keyboard  *fakeListener
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		available: true,
		pointer:   &fakeListener{},
		keyboard:  &fakeListener{},
	}
}

func (b *fakeBackend) Available() bool { return b.available }

func (b *fakeBackend) Pointer(h PointerHandler) Listener {
	b.pointerH = h
	return b.pointer
}

func (b *fakeBackend) Keyboard(h KeyHandler) Listener {
	b.keyH = h
	return b.keyboard
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeProbe struct {
	mu    sync.Mutex
	title string
	err   error
}

func (p *fakeProbe) Supported() bool { return true }

func (p *fakeProbe) ForegroundTitle(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, p.err
}

func (p *fakeProbe) set(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func newTestRecorder(b *fakeBackend, clock *fakeClock, opts ...RecorderOption) *Recorder {
	base := []RecorderOption{
		WithBackend(b),
		WithForegroundProbe(NoForegroundProbe()),
		WithClock(clock.Now),
		WithGateInterval(5 * time.Millisecond),
	}
	return NewRecorder(append(base, opts...)...)
}

func TestRecorder_StartWithoutBackend(t *testing.T) {
	b := newFakeBackend()
	b.available = false
	r := newTestRecorder(b, newFakeClock())

	err := r.Start(Config{OutputPath: filepath.Join(t.TempDir(), "c.jsonl")})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("want ErrBackendUnavailable, got %v", err)
	}
	if r.Status().Running {
		t.Error("recorder should stay idle")
	}
}

func TestRecorder_StartRequiresOutputPath(t *testing.T) {
	r := newTestRecorder(newFakeBackend(), newFakeClock())
	if err := r.Start(Config{}); !errors.Is(err, ErrNoOutputPath) {
		t.Fatalf("want ErrNoOutputPath, got %v", err)
	}
}

func TestRecorder_FixedRateThrottle(t *testing.T) {
	tests := []struct {
		name  string
		gap   time.Duration
		wantN int
	}{
		{"10ms apart is throttled", 10 * time.Millisecond, 1},
		{"30ms apart passes", 30 * time.Millisecond, 2},
		{"exactly the rate passes", 25 * time.Millisecond, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			clock := newFakeClock()
			r := newTestRecorder(b, clock)
			path := filepath.Join(t.TempDir(), "capture.jsonl")

			if err := r.Start(Config{Mode: ModeFixed, FixedRateMS: 25, OutputPath: path}); err != nil {
				t.Fatalf("Start: %v", err)
			}
			b.pointerH.Move(10, 10)
			clock.Advance(tt.gap)
			b.pointerH.Move(20, 20)
			if err := r.Stop(); err != nil {
				t.Fatalf("Stop: %v", err)
			}

			lines := readLines(t, path)
			if len(lines) != tt.wantN {
				t.Fatalf("want %d logged moves, got %d", tt.wantN, len(lines))
			}
		})
	}
}

func TestRecorder_FixedRateOnlyThrottlesMoves(t *testing.T) {
	b := newFakeBackend()
	clock := newFakeClock()
	r := newTestRecorder(b, clock)
	path := filepath.Join(t.TempDir(), "capture.jsonl")

	if err := r.Start(Config{Mode: ModeFixed, FixedRateMS: 25, OutputPath: path}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	b.pointerH.Move(1, 1)
	b.pointerH.Click(1, 1, "left", true)
	b.pointerH.Scroll(1, 1, 0, -1)
	b.keyH.Press("a")
	b.keyH.Release("a")
	b.pointerH.Move(2, 2)
	_ = r.Stop()

	lines := readLines(t, path)
	if len(lines) != 5 {
		t.Fatalf("want 5 events (second move throttled), got %d", len(lines))
	}
}

func TestRecorder_EventModeLogsEveryMove(t *testing.T) {
	b := newFakeBackend()
	clock := newFakeClock()
	r := newTestRecorder(b, clock)
	path := filepath.Join(t.TempDir(), "capture.jsonl")

	if err := r.Start(Config{Mode: ModeEvent, FixedRateMS: 25, OutputPath: path}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 5; i++ {
		b.pointerH.Move(i, i)
		clock.Advance(time.Millisecond)
	}
	_ = r.Stop()

	if n := len(readLines(t, path)); n != 5 {
		t.Errorf("want 5 moves, got %d", n)
	}
}

func TestRecorder_RelativeTimestampsAndFields(t *testing.T) {
	b := newFakeBackend()
	clock := newFakeClock()
	r := newTestRecorder(b, clock)
	path := filepath.Join(t.TempDir(), "capture.jsonl")

	if err := r.Start(Config{OutputPath: path}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(1500 * time.Millisecond)
	b.pointerH.Click(0, 0, "right", false)
	_ = r.Stop()

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["type"] != "mouse_click" {
		t.Errorf("type: got %v", got["type"])
	}
	if got["t"] != 1.5 {
		t.Errorf("t: want 1.5, got %v", got["t"])
	}
	if _, ok := got["x"]; !ok {
		t.Error("zero x coordinate must still be written")
	}
	if got["pressed"] != false {
		t.Errorf("pressed: want false, got %v", got["pressed"])
	}
}

func TestRecorder_NoProbeNeverPauses(t *testing.T) {
	b := newFakeBackend()
	r := newTestRecorder(b, newFakeClock())
	path := filepath.Join(t.TempDir(), "capture.jsonl")

	if err := r.Start(Config{TargetWindow: "Diablo IV", OutputPath: path}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	time.Sleep(30 * time.Millisecond)
	st := r.Status()
	if st.Paused {
		t.Error("paused must stay false without foreground inspection")
	}
	if st.ForegroundGate {
		t.Error("ForegroundGate should report unsupported")
	}
}

func TestRecorder_ForegroundGate(t *testing.T) {
	b := newFakeBackend()
	probe := &fakeProbe{title: "Terminal"}
	r := newTestRecorder(b, newFakeClock(), WithForegroundProbe(probe))
	path := filepath.Join(t.TempDir(), "capture.jsonl")

	if err := r.Start(Config{TargetWindow: "Diablo IV", OutputPath: path}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, func() bool { return r.Status().Paused })
	b.keyH.Press("dropped")

	probe.set("diablo iv - season 9")
	waitFor(t, func() bool { return !r.Status().Paused })
	b.keyH.Press("kept")

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 || lines[0]["key"] != "kept" {
		t.Fatalf("want only the focused key press, got %v", lines)
	}
	if r.Status().Paused {
		t.Error("Stop must clear paused")
	}
}

func TestRecorder_ProbeErrorDoesNotPause(t *testing.T) {
	b := newFakeBackend()
	probe := &fakeProbe{err: errors.New("no display")}
	r := newTestRecorder(b, newFakeClock(), WithForegroundProbe(probe))

	if err := r.Start(Config{TargetWindow: "x", OutputPath: filepath.Join(t.TempDir(), "c.jsonl")}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	time.Sleep(20 * time.Millisecond)
	if r.Status().Paused {
		t.Error("probe failure should not pause recording")
	}
}

func TestRecorder_StartWhileRunningIsNoop(t *testing.T) {
	b := newFakeBackend()
	r := newTestRecorder(b, newFakeClock())
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jsonl")

	if err := r.Start(Config{OutputPath: first}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(Config{OutputPath: filepath.Join(dir, "second.jsonl")}); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := r.Status().Config.OutputPath; got != first {
		t.Errorf("config replaced while running: %s", got)
	}
	_ = r.Stop()
}

func TestRecorder_StopIdempotent(t *testing.T) {
	b := newFakeBackend()
	r := newTestRecorder(b, newFakeClock())

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop on idle recorder: %v", err)
	}
	if err := r.Start(Config{OutputPath: filepath.Join(t.TempDir(), "c.jsonl")}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if !b.pointer.stopped || !b.keyboard.stopped {
		t.Error("both listeners should be stopped")
	}
}

func TestRecorder_EventsAfterStopIgnored(t *testing.T) {
	b := newFakeBackend()
	r := newTestRecorder(b, newFakeClock())
	path := filepath.Join(t.TempDir(), "c.jsonl")

	_ = r.Start(Config{OutputPath: path})
	_ = r.Stop()
	b.keyH.Press("late")

	if n := len(readLines(t, path)); n != 0 {
		t.Errorf("want no events after stop, got %d", n)
	}
}

func TestRecorder_StopReportsListenerErrors(t *testing.T) {
	b := newFakeBackend()
	b.pointer.stopErr = errors.New("pointer hook stuck")
	b.keyboard.stopErr = errors.New("keyboard hook stuck")
	r := newTestRecorder(b, newFakeClock())

	_ = r.Start(Config{OutputPath: filepath.Join(t.TempDir(), "c.jsonl")})
	err := r.Stop()
	if err == nil {
		t.Fatal("want joined teardown error")
	}
	if !errors.Is(err, b.pointer.stopErr) || !errors.Is(err, b.keyboard.stopErr) {
		t.Errorf("both listener errors should be reported: %v", err)
	}
	if r.Status().Running {
		t.Error("recorder must be idle after Stop even when teardown fails")
	}
}

func TestRecorder_ListenerStartFailureCleansUp(t *testing.T) {
	b := newFakeBackend()
	b.keyboard.startErr = errors.New("permission denied")
	r := newTestRecorder(b, newFakeClock())

	err := r.Start(Config{OutputPath: filepath.Join(t.TempDir(), "c.jsonl")})
	if err == nil {
		t.Fatal("want start error")
	}
	if r.Status().Running {
		t.Error("recorder should be idle after failed start")
	}
}

func TestRecorder_AppendsAcrossSessions(t *testing.T) {
	b := newFakeBackend()
	r := newTestRecorder(b, newFakeClock())
	path := filepath.Join(t.TempDir(), "nested", "capture.jsonl")

	for i := 0; i < 2; i++ {
		if err := r.Start(Config{OutputPath: path}); err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		b.keyH.Press("k")
		if got := r.Status().EventsWritten; got != 1 {
			t.Errorf("session %d: counter should reset, got %d", i, got)
		}
		_ = r.Stop()
	}

	if n := len(readLines(t, path)); n != 2 {
		t.Errorf("want 2 lines appended across sessions, got %d", n)
	}
}

func TestRecorder_ObserverAndSessionHook(t *testing.T) {
	b := newFakeBackend()
	clock := newFakeClock()

	var observed []Event
	var observedIDs []string
	var summary SessionSummary
	r := newTestRecorder(b, clock,
		WithObserver(func(sessionID string, e Event) {
			observed = append(observed, e)
			observedIDs = append(observedIDs, sessionID)
		}),
		WithSessionHook(func(s SessionSummary) { summary = s }),
	)

	path := filepath.Join(t.TempDir(), "c.jsonl")
	_ = r.Start(Config{OutputPath: path, Mode: ModeEvent})
	b.keyH.Press("q")
	b.keyH.Release("q")
	clock.Advance(2 * time.Second)
	_ = r.Stop()

	if len(observed) != 2 {
		t.Fatalf("want 2 observed events, got %d", len(observed))
	}
	if summary.EventsWritten != 2 {
		t.Errorf("summary events: want 2, got %d", summary.EventsWritten)
	}
	if summary.ID == "" {
		t.Error("summary should carry a session id")
	}
	for _, id := range observedIDs {
		if id != summary.ID {
			t.Errorf("observer session id = %q, want %q", id, summary.ID)
		}
	}
	if got := summary.EndedAt.Sub(summary.StartedAt); got != 2*time.Second {
		t.Errorf("summary duration: want 2s, got %v", got)
	}
	if summary.Config.OutputPath != path {
		t.Errorf("summary output path: got %s", summary.Config.OutputPath)
	}
}

// countingProbe reports an unsupported platform and counts Supported calls.
type countingProbe struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProbe) Supported() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return false
}

func (p *countingProbe) ForegroundTitle(context.Context) (string, error) {
	return "", errProbeUnsupported
}

func TestRecorder_GateSupportCheckedOnce(t *testing.T) {
	b := newFakeBackend()
	probe := &countingProbe{}
	var seen int
	var r *Recorder
	r = newTestRecorder(b, newFakeClock(),
		WithForegroundProbe(probe),
		WithObserver(func(string, Event) {
			seen++
			_ = r.Status()
		}),
	)

	_ = r.Start(Config{OutputPath: filepath.Join(t.TempDir(), "c.jsonl"), Mode: ModeEvent})
	for i := 0; i < 50; i++ {
		b.keyH.Press("x")
	}
	_ = r.SupportsForegroundGate()
	_ = r.Stop()

	if seen != 50 {
		t.Fatalf("observed %d events, want 50", seen)
	}
	if probe.calls != 1 {
		t.Errorf("Supported called %d times, want 1", probe.calls)
	}
}

// blockingListener's Stop waits until release is closed.
type blockingListener struct {
	entered chan struct{}
	release chan struct{}
}

func (l *blockingListener) Start() error { return nil }

func (l *blockingListener) Stop() error {
	close(l.entered)
	<-l.release
	return nil
}

// swapBackend hands out next as the pointer listener once, then falls back to
// the embedded fake's listener.
type swapBackend struct {
	*fakeBackend
	next Listener
}

func (b *swapBackend) Pointer(h PointerHandler) Listener {
	b.pointerH = h
	if l := b.next; l != nil {
		b.next = nil
		return l
	}
	return b.pointer
}

func TestRecorder_StartWhileStopIsDraining(t *testing.T) {
	slow := &blockingListener{entered: make(chan struct{}), release: make(chan struct{})}
	b := &swapBackend{fakeBackend: newFakeBackend(), next: slow}

	var mu sync.Mutex
	var summaries []SessionSummary
	r := newTestRecorder(b.fakeBackend, newFakeClock(),
		WithBackend(b),
		WithSessionHook(func(s SessionSummary) {
			mu.Lock()
			defer mu.Unlock()
			summaries = append(summaries, s)
		}),
	)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.jsonl")
	second := filepath.Join(dir, "second.jsonl")

	if err := r.Start(Config{OutputPath: first}); err != nil {
		t.Fatalf("Start first: %v", err)
	}
	b.keyH.Press("a")
	firstKeys := b.keyH

	stopped := make(chan error, 1)
	go func() { stopped <- r.Stop() }()
	<-slow.entered

	if err := r.Start(Config{OutputPath: second}); err != nil {
		t.Fatalf("Start second: %v", err)
	}
	close(slow.release)
	if err := <-stopped; err != nil {
		t.Fatalf("first Stop: %v", err)
	}

	firstKeys.Press("late")
	b.keyH.Press("b")

	st := r.Status()
	if !st.Running || st.EventsWritten != 1 {
		t.Fatalf("second session after first Stop: running=%v events=%d, want running with 1 event", st.Running, st.EventsWritten)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	if lines := readLines(t, first); len(lines) != 1 || lines[0]["key"] != "a" {
		t.Errorf("first log = %v, want only key a", lines)
	}
	if lines := readLines(t, second); len(lines) != 1 || lines[0]["key"] != "b" {
		t.Errorf("second log = %v, want only key b", lines)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(summaries) != 2 {
		t.Fatalf("got %d session summaries, want 2", len(summaries))
	}
	if summaries[0].Config.OutputPath != first || summaries[1].Config.OutputPath != second {
		t.Errorf("summaries point at %s and %s", summaries[0].Config.OutputPath, summaries[1].Config.OutputPath)
	}
	if summaries[0].ID == summaries[1].ID {
		t.Error("sessions should have distinct ids")
	}
	if summaries[0].EventsWritten != 1 {
		t.Errorf("first summary events = %d, want 1", summaries[0].EventsWritten)
	}
}
