package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const inputWidth = 56

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = inputWidth
	ti.SetValue(value)
	return ti
}

type field struct {
	label string
	input textinput.Model
}

// form is a vertical list of labelled text inputs with one focused field.
type form struct {
	fields  []field
	focus   int
	focused bool
}

func (f *form) add(label string, ti textinput.Model) {
	f.fields = append(f.fields, field{label: label, input: ti})
}

func (f *form) Focus() tea.Cmd {
	f.focused = true
	if len(f.fields) == 0 {
		return nil
	}
	return f.fields[f.focus].input.Focus()
}

func (f *form) Blur() {
	f.focused = false
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
}

func (f *form) move(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	if !f.focused {
		return nil
	}
	return f.fields[f.focus].input.Focus()
}

func (f *form) next() tea.Cmd { return f.move(1) }
func (f *form) prev() tea.Cmd { return f.move(-1) }

// update forwards msg to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) set(i int, v string) {
	f.fields[i].input.SetValue(v)
}

func (f *form) view(th Theme) string {
	rows := make([]string, 0, len(f.fields))
	for i, fl := range f.fields {
		label := th.Label.Render(fl.label)
		if f.focused && i == f.focus {
			label = th.Label.Foreground(th.Accent).Bold(true).Render(fl.label)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, fl.input.View()))
	}
	return strings.Join(rows, "\n")
}
