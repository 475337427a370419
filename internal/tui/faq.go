package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/nixlim/jarviz/internal/registry"
)

const faqMarkdown = `# JARVIZ FAQ

## General

- **Ctrl+K** opens Search. Type to find tools and pages.
- The left sidebar is navigation. Each section is a page.
- **Esc** returns to the sidebar, **q** or **Ctrl+C** quits.

## GitHub ZIP Downloader

- Paste a repo link like ` + "`https://github.com/OWNER/REPO`" + `.
- Private repos: add a GitHub Personal Access Token with repo read access.
- If a repo uses a different branch, type it in Branch or paste a ` + "`/tree/branch`" + ` link.

## Capture

- Input is only logged while the target window has focus.
- On Linux the recorder reads ` + "`/dev/input`" + `; your user needs the **input** group.
- Logs are JSON lines, one event per line, appended to the chosen file.

## Event Timers

- Press **o** on the timers page to toggle the overlay window.

## Safety

- This app downloads public files and runs local tools only.
- Tokens are kept in memory only and never saved to disk.
`

// FAQPage renders the help text.
type FAQPage struct {
	keys     KeyMap
	style    string
	vp       viewport.Model
	width    int
	rendered string
	err      error
}

func NewFAQPage() *FAQPage {
	return &FAQPage{keys: DefaultKeyMap(), style: "dark", vp: viewport.New(0, 0)}
}

func (p *FAQPage) ID() string    { return PageFAQ }
func (p *FAQPage) Title() string { return "FAQ" }

func (p *FAQPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "faq",
		Title:    "Help and FAQ",
		Keywords: []string{"help", "faq", "hotkeys", "troubleshoot"},
		PageID:   PageFAQ,
	})
}

func (p *FAQPage) Init() tea.Cmd  { return nil }
func (p *FAQPage) Focus() tea.Cmd { return nil }
func (p *FAQPage) Blur()          {}

func (p *FAQPage) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, p.keys.Up):
		p.vp.LineUp(1)
	case key.Matches(km, p.keys.Down):
		p.vp.LineDown(1)
	case key.Matches(km, p.keys.PageUp):
		p.vp.HalfViewUp()
	case key.Matches(km, p.keys.PageDown):
		p.vp.HalfViewDown()
	}
	return nil
}

// render re-renders the markdown when the available width changes.
func (p *FAQPage) render(width int) {
	if width == p.width && p.rendered != "" {
		return
	}
	p.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(p.style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err == nil {
		p.rendered, err = r.Render(faqMarkdown)
	}
	if err != nil {
		p.err = err
		p.rendered = faqMarkdown
	}
	p.vp.SetContent(p.rendered)
}

func (p *FAQPage) View(th Theme, width, height int) string {
	p.render(width)
	p.vp.Width = width
	p.vp.Height = max(height-2, 1)
	out := th.H1.Render("Help / FAQ") + "\n" + p.vp.View()
	if p.err != nil {
		out += "\n" + th.Dim.Render("plain text: "+p.err.Error())
	}
	return out
}
