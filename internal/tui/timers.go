package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/registry"
	"github.com/nixlim/jarviz/internal/schedule"
)

// Overlay starts and stops the separate timer overlay window.
type Overlay interface {
	Enabled() bool
	Toggle() (bool, error)
}

type scheduleMsg struct {
	events []schedule.Event
	err    error
	at     time.Time
}

var (
	refreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	overlayKey = key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle overlay"))
)

const upcomingShown = 10

// TimersPage shows countdowns to the next scheduled world events.
type TimersPage struct {
	client  *schedule.Client
	overlay Overlay
	limit   int
	refresh time.Duration
	now     func() time.Time

	events    []schedule.Event
	next      schedule.Next
	fetchedAt time.Time
	loading   bool
	err       error
}

// NewTimersPage creates the timers page. overlay may be nil when no overlay
// command is configured.
func NewTimersPage(client *schedule.Client, overlay Overlay, cfg config.ScheduleConfig) *TimersPage {
	return &TimersPage{
		client:  client,
		overlay: overlay,
		limit:   cfg.Limit,
		refresh: time.Duration(cfg.RefreshSeconds) * time.Second,
		now:     time.Now,
	}
}

func (p *TimersPage) ID() string    { return PageTimers }
func (p *TimersPage) Title() string { return "Event Timers" }

func (p *TimersPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "open_timers",
		Title:    "Event Timers",
		Keywords: []string{"timer", "helltide", "legion", "world boss", "schedule", "overlay"},
		PageID:   PageTimers,
	})
}

func (p *TimersPage) Init() tea.Cmd  { return p.fetch() }
func (p *TimersPage) Focus() tea.Cmd { return nil }
func (p *TimersPage) Blur()          {}

func (p *TimersPage) fetch() tea.Cmd {
	if p.loading {
		return nil
	}
	p.loading = true
	client, limit, now := p.client, p.limit, p.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		events, err := client.Fetch(ctx, limit)
		return scheduleMsg{events: events, err: err, at: now()}
	}
}

func (p *TimersPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case scheduleMsg:
		p.loading = false
		p.fetchedAt = msg.at
		p.err = msg.err
		if msg.err == nil {
			p.events = msg.events
			p.next = schedule.NextByKind(msg.events)
		}
		return nil

	case tickMsg:
		if p.refresh > 0 && !p.fetchedAt.IsZero() && time.Time(msg).Sub(p.fetchedAt) >= p.refresh {
			return p.fetch()
		}
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, refreshKey):
			return p.fetch()
		case key.Matches(msg, overlayKey):
			return p.toggleOverlay()
		}
	}
	return nil
}

func (p *TimersPage) toggleOverlay() tea.Cmd {
	if p.overlay == nil {
		return notice("no overlay command configured", true)
	}
	on, err := p.overlay.Toggle()
	if err != nil {
		return notice("overlay: "+err.Error(), true)
	}
	if on {
		return notice("event timers overlay enabled", false)
	}
	return notice("event timers overlay disabled", false)
}

func (p *TimersPage) View(th Theme, width, height int) string {
	now := p.now()

	var b strings.Builder
	b.WriteString(th.H1.Render("Event Timers"))
	b.WriteString("\n")
	b.WriteString(th.Dim.Render("Countdowns to the next Helltide, Legion and World Boss."))
	b.WriteString("\n\n")

	var card strings.Builder
	for i, line := range schedule.Lines(p.next, now) {
		if i > 0 {
			card.WriteString("\n")
		}
		card.WriteString(th.H2.Render(line))
	}
	b.WriteString(th.Card.Render(card.String()))
	b.WriteString("\n")

	switch {
	case p.loading && p.fetchedAt.IsZero():
		b.WriteString(th.Dim.Render("Loading schedule..."))
	case p.err != nil:
		b.WriteString(th.Danger.Render("Fetch failed: " + p.err.Error()))
	case !p.fetchedAt.IsZero():
		b.WriteString(th.Dim.Render("Updated " + humanize.RelTime(p.fetchedAt, now, "ago", "from now")))
	}
	b.WriteString("\n")

	overlay := "unavailable"
	if p.overlay != nil {
		overlay = "off"
		if p.overlay.Enabled() {
			overlay = "on"
		}
	}
	b.WriteString(th.Dim.Render(fmt.Sprintf("Overlay: %s · r refresh · o toggle overlay", overlay)))
	b.WriteString("\n\n")

	if len(p.events) > 0 {
		b.WriteString(th.H2.Render("Upcoming"))
		b.WriteString("\n")
		shown := min(len(p.events), upcomingShown, max(height-14, 1))
		for _, e := range p.events[:shown] {
			label := e.Label
			if label == "" {
				label = string(e.Kind)
			}
			b.WriteString(fmt.Sprintf("  %-9s %s  %s\n",
				formatClock(e.StartsAt), countdownCell(e.StartsAt, now), label))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatClock renders t as a local wall-clock time.
func formatClock(t time.Time) string {
	return t.Local().Format("3:04 PM")
}

// countdownCell pads the countdown to a fixed-width column.
func countdownCell(target, now time.Time) string {
	return fmt.Sprintf("%8s", schedule.FormatCountdown(target, now))
}
