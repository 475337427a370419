package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/capture"
	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/events"
	"github.com/nixlim/jarviz/internal/registry"
)

const (
	capFieldTarget = iota
	capFieldRate
	capFieldOutput
)

const (
	minFixedRateMS = 1
	maxFixedRateMS = 250
	tailLines      = 12
)

// CapturePage drives the input recorder and shows the most recent events.
type CapturePage struct {
	keys      KeyMap
	rec       *capture.Recorder
	tail      *events.RingBuffer
	outputDir string
	now       func() time.Time

	form     form
	mode     capture.Mode
	defRate  int
	status   capture.Status
	err      error
	warnings []string
}

// NewCapturePage creates the recorder page. tail is the buffer the recorder's
// observer feeds; it may be nil.
func NewCapturePage(rec *capture.Recorder, tail *events.RingBuffer, cfg config.CaptureConfig) *CapturePage {
	p := &CapturePage{
		keys:      DefaultKeyMap(),
		rec:       rec,
		tail:      tail,
		outputDir: config.ExpandPath(cfg.OutputDir),
		now:       time.Now,
		mode:      capture.ParseMode(cfg.Mode),
		defRate:   clampRate(cfg.FixedRateMS),
	}
	p.form.add("Target window", newInput("foreground window contains...", cfg.TargetWindow))
	p.form.add("Rate (ms)", newInput(strconv.Itoa(p.defRate), strconv.Itoa(p.defRate)))
	p.form.add("Output", newInput("capture log path", p.newOutputPath()))

	if !rec.Available() {
		p.warnings = append(p.warnings, "Input capture is not available: JARVIZ needs read access to /dev/input (join the input group).")
	}
	if !rec.SupportsForegroundGate() {
		p.warnings = append(p.warnings, "Foreground-window gating is unavailable here. Recording may capture input from any focused window.")
	}
	p.status = rec.Status()
	return p
}

func (p *CapturePage) ID() string    { return PageCapture }
func (p *CapturePage) Title() string { return "Capture" }

func (p *CapturePage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "open_capture",
		Title:    "Capture Recorder",
		Keywords: []string{"capture", "record", "macro", "mouse", "keyboard", "input"},
		PageID:   PageCapture,
	})
}

func (p *CapturePage) Init() tea.Cmd  { return nil }
func (p *CapturePage) Focus() tea.Cmd { return p.form.Focus() }
func (p *CapturePage) Blur()          { p.form.Blur() }

func (p *CapturePage) newOutputPath() string {
	name := "capture_" + p.now().Format("20060102_150405") + ".jsonl"
	return filepath.Join(p.outputDir, name)
}

func clampRate(ms int) int {
	return max(minFixedRateMS, min(maxFixedRateMS, ms))
}

// rate parses the rate field, falling back to the configured default.
func (p *CapturePage) rate() int {
	n, err := strconv.Atoi(p.form.value(capFieldRate))
	if err != nil {
		return p.defRate
	}
	return clampRate(n)
}

func (p *CapturePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tickMsg:
		p.status = p.rec.Status()
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.NextField), key.Matches(msg, arrowDown):
			return p.form.next()
		case key.Matches(msg, p.keys.PrevField), key.Matches(msg, arrowUp):
			return p.form.prev()
		case key.Matches(msg, p.keys.Toggle):
			if p.mode == capture.ModeEvent {
				p.mode = capture.ModeFixed
			} else {
				p.mode = capture.ModeEvent
			}
			return nil
		case key.Matches(msg, p.keys.NewFile):
			p.form.set(capFieldOutput, p.newOutputPath())
			return nil
		case key.Matches(msg, p.keys.Run):
			if p.rec.Status().Running {
				return p.stop()
			}
			return p.start()
		}
		return p.form.update(msg)
	}
	return nil
}

func (p *CapturePage) start() tea.Cmd {
	target := p.form.value(capFieldTarget)
	if target == "" {
		target = "Diablo IV"
	}
	cfg := capture.Config{
		TargetWindow: target,
		Mode:         p.mode,
		FixedRateMS:  p.rate(),
		OutputPath:   config.ExpandPath(p.form.value(capFieldOutput)),
	}
	if p.tail != nil {
		p.tail.Reset()
	}
	p.err = p.rec.Start(cfg)
	p.status = p.rec.Status()
	if p.err != nil {
		return notice("could not start capture: "+p.err.Error(), true)
	}
	return notice("recording to "+cfg.OutputPath, false)
}

func (p *CapturePage) stop() tea.Cmd {
	written := p.rec.Status().EventsWritten
	p.err = p.rec.Stop()
	p.status = p.rec.Status()
	if p.err != nil {
		return notice("capture stopped with error: "+p.err.Error(), true)
	}
	return notice(fmt.Sprintf("capture stopped, %d events written", written), false)
}

func (p *CapturePage) stateLabel() string {
	switch {
	case !p.status.Running:
		return "idle"
	case p.status.Paused:
		return "paused (target not focused)"
	default:
		return "recording"
	}
}

func (p *CapturePage) View(th Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(th.H1.Render("Capture"))
	b.WriteString("\n")
	b.WriteString(th.Dim.Render("Record mouse and keyboard input while a target window is focused. No playback, just logging."))
	b.WriteString("\n\n")
	for _, w := range p.warnings {
		b.WriteString(th.Danger.Render("! " + w))
		b.WriteString("\n")
	}
	if len(p.warnings) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(p.form.view(th))
	b.WriteString("\n")
	mode := "Event-driven (recommended)"
	if p.mode == capture.ModeFixed {
		mode = "Fixed-rate mouse move throttle"
	}
	b.WriteString(th.Label.Render("Mode") + mode)
	b.WriteString("\n\n")

	state := fmt.Sprintf("Status: %s | events: %d", p.stateLabel(), p.status.EventsWritten)
	if p.status.Running && !p.status.Paused {
		b.WriteString(th.OK.Render(state))
	} else {
		b.WriteString(th.Dim.Render(state))
	}
	if p.status.LastWriteError != nil {
		b.WriteString("\n" + th.Danger.Render("write error: "+p.status.LastWriteError.Error()))
	} else if p.err != nil {
		b.WriteString("\n" + th.Danger.Render(p.err.Error()))
	}
	b.WriteString("\n")

	action := "start"
	if p.status.Running {
		action = "stop"
	}
	b.WriteString(th.Dim.Render("ctrl+r " + action + " · ctrl+t mode · ctrl+n new file"))
	b.WriteString("\n")

	if p.tail != nil {
		n := min(tailLines, max(height-20, 3))
		recent := p.tail.Last(n)
		b.WriteString("\n" + th.H2.Render(fmt.Sprintf("Recent events (%d buffered)", p.tail.Len())))
		b.WriteString("\n")
		if len(recent) == 0 {
			b.WriteString(th.Dim.Render("  nothing yet"))
		}
		for i, e := range recent {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  " + e.Formatted)
		}
	}
	return b.String()
}
