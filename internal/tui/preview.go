package tui

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/grab"
	"github.com/nixlim/jarviz/internal/registry"
)

const (
	pvFieldX = iota
	pvFieldY
	pvFieldW
	pvFieldH
	pvFieldFPS
)

const maxPreviewFPS = 30

type previewTickMsg struct{ gen int }

type previewFrameMsg struct {
	gen int
	img image.Image
	err error
}

// PreviewPage shows a live, downsampled view of a screen region.
type PreviewPage struct {
	keys    KeyMap
	grabber grab.Grabber

	form    form
	running bool
	// gen invalidates ticks and frames from a previous run.
	gen    int
	region grab.Region
	fps    int
	frame  image.Image
	frames int
	err    error
}

func NewPreviewPage(g grab.Grabber, cfg config.PreviewConfig) *PreviewPage {
	p := &PreviewPage{keys: DefaultKeyMap(), grabber: g}
	p.form.add("X", newInput("0", strconv.Itoa(cfg.X)))
	p.form.add("Y", newInput("0", strconv.Itoa(cfg.Y)))
	p.form.add("W", newInput("800", strconv.Itoa(cfg.W)))
	p.form.add("H", newInput("600", strconv.Itoa(cfg.H)))
	p.form.add("FPS", newInput("10", strconv.Itoa(cfg.FPS)))
	return p
}

func (p *PreviewPage) ID() string    { return PagePreview }
func (p *PreviewPage) Title() string { return "Preview" }

func (p *PreviewPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "open_preview",
		Title:    "Live Capture Preview",
		Keywords: []string{"preview", "screen", "region", "ocr", "capture"},
		PageID:   PagePreview,
	})
}

func (p *PreviewPage) Init() tea.Cmd  { return nil }
func (p *PreviewPage) Focus() tea.Cmd { return p.form.Focus() }
func (p *PreviewPage) Blur()          { p.form.Blur() }

// settings parses the form into a region and frame rate.
func (p *PreviewPage) settings() (grab.Region, int, error) {
	var vals [5]int
	names := [5]string{"X", "Y", "W", "H", "FPS"}
	for i := range vals {
		n, err := strconv.Atoi(p.form.value(i))
		if err != nil {
			return grab.Region{}, 0, fmt.Errorf("%s must be a whole number", names[i])
		}
		vals[i] = n
	}
	r := grab.Region{X: vals[pvFieldX], Y: vals[pvFieldY], W: vals[pvFieldW], H: vals[pvFieldH]}
	if err := r.Validate(); err != nil {
		return grab.Region{}, 0, err
	}
	fps := max(1, min(maxPreviewFPS, vals[pvFieldFPS]))
	return r, fps, nil
}

func (p *PreviewPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case previewTickMsg:
		if !p.running || msg.gen != p.gen {
			return nil
		}
		return p.grabCmd()

	case previewFrameMsg:
		if msg.gen != p.gen {
			return nil
		}
		if msg.err != nil {
			p.running = false
			p.err = msg.err
			return notice("preview stopped: "+msg.err.Error(), true)
		}
		p.frame = msg.img
		p.frames++
		if !p.running {
			return nil
		}
		return p.scheduleTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.NextField), key.Matches(msg, arrowDown):
			return p.form.next()
		case key.Matches(msg, p.keys.PrevField), key.Matches(msg, arrowUp):
			return p.form.prev()
		case key.Matches(msg, p.keys.Run):
			if p.running {
				p.stop()
				return nil
			}
			return p.start()
		}
		return p.form.update(msg)
	}
	return nil
}

func (p *PreviewPage) start() tea.Cmd {
	if !p.grabber.Available() {
		p.err = grab.ErrUnsupported
		return nil
	}
	r, fps, err := p.settings()
	if err != nil {
		p.err = err
		return nil
	}
	p.region, p.fps, p.err = r, fps, nil
	p.gen++
	p.running = true
	p.frames = 0
	return p.grabCmd()
}

func (p *PreviewPage) stop() {
	p.running = false
	p.gen++
}

func (p *PreviewPage) scheduleTick() tea.Cmd {
	gen := p.gen
	return tea.Tick(time.Second/time.Duration(p.fps), func(time.Time) tea.Msg {
		return previewTickMsg{gen: gen}
	})
}

func (p *PreviewPage) grabCmd() tea.Cmd {
	g, r, gen := p.grabber, p.region, p.gen
	timeout := max(time.Second, 2*time.Second/time.Duration(p.fps))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		img, err := g.Grab(ctx, r)
		return previewFrameMsg{gen: gen, img: img, err: err}
	}
}

func (p *PreviewPage) View(th Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(th.H1.Render("Live Capture Preview"))
	b.WriteString("\n")
	b.WriteString(p.form.view(th))
	b.WriteString("\n")

	switch {
	case p.err != nil:
		b.WriteString(th.Danger.Render("Error: " + p.err.Error()))
	case p.running:
		b.WriteString(th.OK.Render(fmt.Sprintf("Live %s @ %d fps · %d frames", p.region, p.fps, p.frames)))
	default:
		b.WriteString(th.Dim.Render("Stopped"))
	}
	b.WriteString("\n" + th.Dim.Render("ctrl+r start/stop · tab next field"))
	b.WriteString("\n\n")

	if p.frame != nil {
		rows := max(height-lipgloss.Height(b.String())-1, 4)
		b.WriteString(grab.Render(p.frame, max(width-2, 10), rows))
	}
	return b.String()
}

