package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/registry"
)

// palette is the Ctrl+K search popup over the registered tool actions.
type palette struct {
	active  bool
	input   textinput.Model
	results []registry.Action
	cursor  int
	limit   int
	reg     *registry.Registry
}

func newPalette(reg *registry.Registry, limit int) palette {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Search tools…"
	ti.Width = 48
	if limit < 1 {
		limit = 1
	}
	return palette{input: ti, limit: limit, reg: reg}
}

func (p *palette) open() tea.Cmd {
	p.active = true
	p.input.SetValue("")
	p.results = nil
	p.cursor = 0
	return p.input.Focus()
}

func (p *palette) close() {
	p.active = false
	p.input.Blur()
}

func (p *palette) refresh() {
	results := p.reg.Search(p.input.Value())
	if len(results) > p.limit {
		results = results[:p.limit]
	}
	p.results = results
	if p.cursor >= len(results) {
		p.cursor = max(0, len(results)-1)
	}
}

func (p palette) selected() (registry.Action, bool) {
	if p.cursor < 0 || p.cursor >= len(p.results) {
		return registry.Action{}, false
	}
	return p.results[p.cursor], true
}

// update handles a key while the palette is open. It returns the page to
// open when the user picked a result.
func (p *palette) update(msg tea.KeyMsg, keys KeyMap) (string, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		p.close()
		return "", nil
	case key.Matches(msg, keys.Enter):
		a, ok := p.selected()
		if !ok {
			return "", nil
		}
		p.close()
		return a.PageID, nil
	case key.Matches(msg, arrowUp):
		if p.cursor > 0 {
			p.cursor--
		}
		return "", nil
	case key.Matches(msg, arrowDown):
		if p.cursor < len(p.results)-1 {
			p.cursor++
		}
		return "", nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.refresh()
	return "", cmd
}

func (p palette) view(th Theme, width int) string {
	var b strings.Builder
	b.WriteString(th.H2.Render("Search"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	switch {
	case strings.TrimSpace(p.input.Value()) == "":
		b.WriteString(th.Dim.Render("Type to find tools and pages."))
	case len(p.results) == 0:
		b.WriteString(th.Dim.Render("No matching tools."))
	default:
		for i, a := range p.results {
			line := fmt.Sprintf("%s  %s", a.Title, th.Dim.Render("→ "+a.PageID))
			if i == p.cursor {
				line = th.PaletteActive.Render("▸ " + a.Title)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			if i < len(p.results)-1 {
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n\n")
	b.WriteString(th.Dim.Render("enter open · ↑/↓ select · esc close"))

	boxW := min(max(width-4, 20), 72)
	return th.PaletteBox.Width(boxW).Render(b.String())
}
