package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/jarviz/internal/schedule"
	"github.com/nixlim/jarviz/internal/settings"
)

// ScheduleUpdateMsg delivers a freshly fetched schedule to the overlay.
type ScheduleUpdateMsg struct {
	Events []schedule.Event
	Err    error
}

type overlayTickMsg time.Time

// OverlayModel is the compact countdown window run by "jarviz overlay".
// Schedule data arrives from outside via ScheduleUpdateMsg.
type OverlayModel struct {
	keys  KeyMap
	theme Theme
	now   func() time.Time

	next    schedule.Next
	loaded  bool
	err     error
	current time.Time
}

func NewOverlayModel(s settings.Settings) OverlayModel {
	return OverlayModel{
		keys:    DefaultKeyMap(),
		theme:   NewTheme(s),
		now:     time.Now,
		current: time.Now(),
	}
}

func overlayTick() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg { return overlayTickMsg(t) })
}

func (m OverlayModel) Init() tea.Cmd {
	return overlayTick()
}

func (m OverlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case overlayTickMsg:
		m.current = m.now()
		return m, overlayTick()

	case ScheduleUpdateMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.next = schedule.NextByKind(msg.Events)
			m.loaded = true
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.QuitRune) || key.Matches(msg, m.keys.Escape) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m OverlayModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("JARVIZ timers"))
	b.WriteString("\n")
	switch {
	case !m.loaded && m.err == nil:
		b.WriteString(m.theme.Dim.Render("Loading..."))
	case !m.loaded:
		b.WriteString(m.theme.Danger.Render("Timers unavailable"))
	default:
		b.WriteString(strings.Join(schedule.Lines(m.next, m.current), "\n"))
		if m.err != nil {
			b.WriteString("\n" + m.theme.Dim.Render("(stale: refresh failed)"))
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
