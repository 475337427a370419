// Package tui is the JARVIZ launcher: a sidebar of tool pages behind a
// fuzzy-search command palette.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/registry"
	"github.com/nixlim/jarviz/internal/settings"
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusPage
)

const (
	sidebarWidth = 24
	minWidth     = 60
	minHeight    = 12
)

// Model is the root bubbletea model.
type Model struct {
	keys     KeyMap
	theme    Theme
	registry *registry.Registry
	pages    []Page
	active   int
	focus    focusArea
	palette  palette

	width  int
	height int

	notice      string
	noticeErr   bool
	refreshRate time.Duration
	quitting    bool
	onShutdown  func()
}

type ModelOption func(*Model)

// WithOnShutdown registers a callback run once when the user quits.
func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

// WithNotice shows text in the footer until the next notice replaces it.
func WithNotice(text string, isErr bool) ModelOption {
	return func(m *Model) { m.notice, m.noticeErr = text, isErr }
}

// WithStartPage selects the page shown first.
func WithStartPage(id string) ModelOption {
	return func(m *Model) {
		if i := m.pageIndex(id); i >= 0 {
			m.active = i
		}
	}
}

// NewModel builds the shell around pages, registering every page's actions
// in a fresh registry in sidebar order.
func NewModel(cfg config.Config, s settings.Settings, pages []Page, opts ...ModelOption) Model {
	reg := registry.New()
	for _, p := range pages {
		p.RegisterActions(reg)
	}

	m := Model{
		keys:        DefaultKeyMap(),
		theme:       NewTheme(s),
		registry:    reg,
		pages:       pages,
		palette:     newPalette(reg, cfg.Display.PaletteLimit),
		refreshRate: time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
	}
	if m.refreshRate <= 0 {
		m.refreshRate = time.Second
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Registry exposes the action registry the pages populated.
func (m Model) Registry() *registry.Registry {
	return m.registry
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	for _, p := range m.pages {
		cmds = append(cmds, p.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) pageIndex(id string) int {
	for i, p := range m.pages {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

func (m Model) activePage() Page {
	if m.active < 0 || m.active >= len(m.pages) {
		return nil
	}
	return m.pages[m.active]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.broadcast(msg), m.tickCmd())

	case OpenPageMsg:
		return m, m.open(msg.ID)

	case SettingsChangedMsg:
		if msg.Err != nil {
			m.notice, m.noticeErr = "settings: "+msg.Err.Error(), true
		} else {
			m.theme = NewTheme(msg.Settings)
		}
		return m, m.broadcast(msg)

	case NoticeMsg:
		m.notice, m.noticeErr = msg.Text, msg.Err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.broadcast(msg)
}

func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages))
	for _, p := range m.pages {
		cmds = append(cmds, p.Update(msg))
	}
	return tea.Batch(cmds...)
}

// open shows the page with id and gives it keyboard focus.
func (m *Model) open(id string) tea.Cmd {
	i := m.pageIndex(id)
	if i < 0 {
		m.notice, m.noticeErr = fmt.Sprintf("unknown page %q", id), true
		return nil
	}
	if m.focus == focusPage {
		if p := m.activePage(); p != nil {
			p.Blur()
		}
	}
	m.active = i
	m.focus = focusPage
	return m.pages[i].Focus()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	if m.palette.active {
		pageID, cmd := m.palette.update(msg, m.keys)
		if pageID != "" {
			return m, m.open(pageID)
		}
		return m, cmd
	}

	if key.Matches(msg, m.keys.Palette) {
		if m.focus == focusPage {
			if p := m.activePage(); p != nil {
				p.Blur()
			}
			m.focus = focusSidebar
		}
		return m, m.palette.open()
	}

	if m.focus == focusPage {
		p := m.activePage()
		if key.Matches(msg, m.keys.Escape) || p == nil {
			if p != nil {
				p.Blur()
			}
			m.focus = focusSidebar
			return m, nil
		}
		return m, p.Update(msg)
	}

	return m.handleSidebarKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.QuitRune):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		if m.active > 0 {
			m.active--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.active < len(m.pages)-1 {
			m.active++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.NextField), msg.String() == "right", msg.String() == "l":
		if p := m.activePage(); p != nil {
			m.focus = focusPage
			return m, p.Focus()
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		r := msg.Runes[0]
		if r >= '1' && r <= '9' {
			if i := int(r - '1'); i < len(m.pages) {
				m.active = i
			}
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.onShutdown != nil {
		m.onShutdown()
	}
	return m, tea.Quit
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	width := max(m.width, minWidth)
	height := max(m.height, minHeight)

	header := m.renderHeader(width)
	footer := m.renderFooter(width)
	bodyH := height - lipgloss.Height(header) - lipgloss.Height(footer)
	bodyH = max(bodyH, 3)

	sidebar := m.renderSidebar(bodyH)
	contentW := width - lipgloss.Width(sidebar) - 2
	var content string
	if m.palette.active {
		content = m.palette.view(m.theme, contentW)
	} else if p := m.activePage(); p != nil {
		content = p.View(m.theme, contentW, bodyH)
	}
	content = clampLines(content, bodyH)
	content = lipgloss.NewStyle().Width(contentW).PaddingLeft(1).Render(content)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader(width int) string {
	left := " JARVIZ · Control Deck"
	right := "ctrl+k search  esc back  ctrl+c quit "
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return m.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(m.theme.Brand.Render("JARVIZ"))
	b.WriteString("\n")
	b.WriteString(m.theme.Dim.Render("Operator Console"))
	b.WriteString("\n\n")
	for i, p := range m.pages {
		label := fmt.Sprintf("%d %s", i+1, p.Title())
		if i > 8 {
			label = "  " + p.Title()
		}
		switch {
		case i == m.active && m.focus == focusSidebar && !m.palette.active:
			label = m.theme.NavSelected.Render(label)
		case i == m.active:
			label = m.theme.NavActive.Render(label)
		default:
			label = m.theme.NavItem.Render(label)
		}
		b.WriteString(label)
		if i < len(m.pages)-1 {
			b.WriteString("\n")
		}
	}
	return m.theme.Sidebar.Width(sidebarWidth).Height(height).Render(b.String())
}

func (m Model) renderFooter(width int) string {
	if m.notice == "" {
		return m.theme.Dim.Width(width).Render(" ")
	}
	if m.noticeErr {
		return m.theme.Danger.Width(width).Render(" " + m.notice)
	}
	return m.theme.Notice.Width(width).Render(" " + m.notice)
}

func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
