package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/registry"
	"github.com/nixlim/jarviz/internal/settings"
)

const (
	setFieldAccent = iota
	setFieldTesseract
)

// SettingsPage edits the persisted preferences.
type SettingsPage struct {
	keys    KeyMap
	path    string
	current settings.Settings

	form      form
	maximized bool
	dirty     bool
	err       error
	saved     bool
}

// NewSettingsPage edits the settings file at path, starting from s.
func NewSettingsPage(path string, s settings.Settings) *SettingsPage {
	p := &SettingsPage{keys: DefaultKeyMap(), path: path}
	p.form.add("Accent colour", newInput(settings.DefaultAccent, ""))
	p.form.add("Tesseract path", newInput("optional, e.g. /usr/bin/tesseract", ""))
	p.load(s)
	return p
}

func (p *SettingsPage) ID() string    { return PageSettings }
func (p *SettingsPage) Title() string { return "Settings" }

func (p *SettingsPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "settings",
		Title:    "Settings",
		Keywords: []string{"accent", "theme", "color", "ui"},
		PageID:   PageSettings,
	})
}

func (p *SettingsPage) Init() tea.Cmd  { return nil }
func (p *SettingsPage) Focus() tea.Cmd { return p.form.Focus() }
func (p *SettingsPage) Blur()          { p.form.Blur() }

func (p *SettingsPage) load(s settings.Settings) {
	p.current = s
	p.form.set(setFieldAccent, s.Accent)
	p.form.set(setFieldTesseract, s.TesseractPath)
	p.maximized = s.StartMaximized
	p.dirty = false
}

func (p *SettingsPage) edited() settings.Settings {
	return settings.Settings{
		Accent:         p.form.value(setFieldAccent),
		StartMaximized: p.maximized,
		TesseractPath:  p.form.value(setFieldTesseract),
	}
}

func (p *SettingsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SettingsChangedMsg:
		// Unsaved edits win over changes made on disk.
		if msg.Err == nil && !p.dirty {
			p.load(msg.Settings)
		}
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.NextField), key.Matches(msg, arrowDown):
			return p.form.next()
		case key.Matches(msg, p.keys.PrevField), key.Matches(msg, arrowUp):
			return p.form.prev()
		case key.Matches(msg, p.keys.Toggle):
			p.maximized = !p.maximized
			p.dirty, p.saved = true, false
			return nil
		case key.Matches(msg, p.keys.Save), key.Matches(msg, p.keys.Enter):
			return p.save()
		}
		before := p.form.fields[p.form.focus].input.Value()
		cmd := p.form.update(msg)
		if p.form.fields[p.form.focus].input.Value() != before {
			p.dirty, p.saved = true, false
		}
		return cmd
	}
	return nil
}

func (p *SettingsPage) save() tea.Cmd {
	s := p.edited()
	if err := s.Validate(); err != nil {
		p.err = err
		return nil
	}
	if err := settings.Save(p.path, s); err != nil {
		p.err = err
		return notice("could not save settings: "+err.Error(), true)
	}
	restart := s.StartMaximized != p.current.StartMaximized
	p.err = nil
	p.load(s)
	p.saved = true

	text := "settings saved"
	if restart {
		text += "; start maximized applies on next launch"
	}
	return tea.Batch(
		func() tea.Msg { return SettingsChangedMsg{Settings: s} },
		notice(text, false),
	)
}

func (p *SettingsPage) View(th Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(th.H1.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(p.form.view(th))
	b.WriteString("\n")
	check := "[ ]"
	if p.maximized {
		check = "[x]"
	}
	b.WriteString(th.Label.Render("Start maximized") + check + th.Dim.Render("  ctrl+t"))
	b.WriteString("\n\n")
	b.WriteString(th.Dim.Render("Example: #3aa3ff or #6fdcff. ctrl+s saves and applies the accent instantly."))
	b.WriteString("\n")

	switch {
	case p.err != nil:
		b.WriteString(th.Danger.Render(p.err.Error()))
	case p.dirty:
		b.WriteString(th.Dim.Render("Unsaved changes"))
	case p.saved:
		b.WriteString(th.OK.Render("Saved to " + p.path))
	}
	return b.String()
}
