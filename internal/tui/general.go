package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/registry"
)

type quickLink struct {
	title  string
	pageID string
}

// GeneralPage is the landing page with shortcuts to the other tools.
type GeneralPage struct {
	keys    KeyMap
	links   []quickLink
	cursor  int
	focused bool
}

func NewGeneralPage() *GeneralPage {
	return &GeneralPage{
		keys: DefaultKeyMap(),
		links: []quickLink{
			{"GitHub: Download repo as ZIP", PageGithub},
			{"Capture recorder", PageCapture},
			{"Screen preview", PagePreview},
			{"Coding helper", PageCoding},
			{"Event timers", PageTimers},
			{"History", PageHistory},
		},
	}
}

func (p *GeneralPage) ID() string    { return PageGeneral }
func (p *GeneralPage) Title() string { return "General" }

func (p *GeneralPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "open_general",
		Title:    "General",
		Keywords: []string{"home", "start", "overview"},
		PageID:   PageGeneral,
	})
	r.Register(registry.Action{
		ID:       "open_github_zip",
		Title:    "GitHub ZIP downloader",
		Keywords: []string{"github", "zip", "download", "repo", "coding"},
		PageID:   PageGithub,
	})
}

func (p *GeneralPage) Init() tea.Cmd  { return nil }
func (p *GeneralPage) Focus() tea.Cmd { p.focused = true; return nil }
func (p *GeneralPage) Blur()          { p.focused = false }

func (p *GeneralPage) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, p.keys.Down):
		if p.cursor < len(p.links)-1 {
			p.cursor++
		}
	case key.Matches(km, p.keys.Enter):
		return openPage(p.links[p.cursor].pageID)
	}
	return nil
}

func (p *GeneralPage) View(th Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(th.H1.Render("JARVIZ"))
	b.WriteString("\n")
	b.WriteString(th.Dim.Render("General utilities and coding tools. Sharp, fast, and modular."))
	b.WriteString("\n\n")

	var card strings.Builder
	card.WriteString(th.H2.Render("Tools"))
	card.WriteString("\n")
	for i, l := range p.links {
		line := "  " + l.title
		if p.focused && i == p.cursor {
			line = th.Cursor.Render("▸ " + l.title)
		}
		card.WriteString(line)
		card.WriteString("\n")
	}
	card.WriteString("\n")
	card.WriteString(th.Dim.Render("Tip: press Ctrl+K to search tools and jump to pages."))
	b.WriteString(th.Card.Width(min(width-2, 72)).Render(card.String()))
	return b.String()
}
