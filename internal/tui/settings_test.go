package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/settings"
)

func newTestSettingsPage(t *testing.T) (*SettingsPage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	p := NewSettingsPage(path, settings.Defaults())
	p.Focus()
	return p, path
}

func TestSettingsPage_Save(t *testing.T) {
	p, path := newTestSettingsPage(t)
	p.form.set(setFieldAccent, "#6fdcff")
	p.form.set(setFieldTesseract, "/usr/bin/tesseract")

	var changed *SettingsChangedMsg
	cmd := p.Update(keyType(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatal("save should return a command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("save should batch the change and the notice")
	}
	for _, c := range batch {
		if msg, ok := c().(SettingsChangedMsg); ok {
			changed = &msg
		}
	}
	if changed == nil || changed.Settings.Accent != "#6fdcff" {
		t.Fatalf("changed = %+v", changed)
	}

	got, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := settings.Settings{Accent: "#6fdcff", TesseractPath: "/usr/bin/tesseract"}
	if got != want {
		t.Errorf("saved %+v, want %+v", got, want)
	}
	if !strings.Contains(p.View(testTheme(), 120, 40), "Saved to") {
		t.Error("view should confirm the save")
	}
}

func TestSettingsPage_InvalidAccent(t *testing.T) {
	p, path := newTestSettingsPage(t)
	p.form.set(setFieldAccent, "blue")

	if cmd := p.Update(keyType(tea.KeyCtrlS)); cmd != nil {
		t.Error("invalid accent should not save")
	}
	if p.err == nil {
		t.Fatal("invalid accent should set an error")
	}
	if _, err := settings.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(p.View(testTheme(), 120, 40), "hex colour") {
		t.Error("view should explain the accent format")
	}
}

func TestSettingsPage_StartMaximizedNotice(t *testing.T) {
	p, _ := newTestSettingsPage(t)
	p.Update(keyType(tea.KeyCtrlT))
	if !p.maximized || !p.dirty {
		t.Fatal("ctrl+t should toggle start maximized")
	}

	n := drive(p, p.Update(keyType(tea.KeyCtrlS)))
	if n == nil || !strings.Contains(n.Text, "next launch") {
		t.Errorf("notice = %+v, want restart hint", n)
	}
}

func TestSettingsPage_ExternalChange(t *testing.T) {
	p, _ := newTestSettingsPage(t)

	p.Update(SettingsChangedMsg{Settings: settings.Settings{Accent: "#112233"}})
	if got := p.form.value(setFieldAccent); got != "#112233" {
		t.Errorf("accent = %q, want reload from disk", got)
	}

	typeInto(p, "4")
	if !p.dirty {
		t.Fatal("typing should mark the page dirty")
	}
	p.Update(SettingsChangedMsg{Settings: settings.Settings{Accent: "#445566"}})
	if got := p.form.value(setFieldAccent); got != "#1122334" {
		t.Errorf("accent = %q, unsaved edits should survive a reload", got)
	}
}
