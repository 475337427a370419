package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/history"
)

func TestHistoryPage_Lists(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := history.NewMemoryStore()
	store.RecordDownload(history.Download{Repo: "acme/widgets@main", Bytes: 2048, Status: history.StatusOK, At: now.Add(-time.Hour)})
	store.RecordDownload(history.Download{Repo: "acme/secret@main", Status: history.StatusFailed, Error: "auth failed (401)", At: now.Add(-time.Minute)})
	store.RecordCapture(history.CaptureSession{
		ID: "s1", Path: "/tmp/capture_1.jsonl", Events: 1500,
		StartedAt: now.Add(-2 * time.Minute), EndedAt: now.Add(-time.Minute),
	})

	p := NewHistoryPage(store, true)
	p.now = func() time.Time { return now }

	view := p.View(testTheme(), 120, 40)
	for _, want := range []string{
		"2 downloads (1 failed, 2.0 kB)",
		"1 captures (1,500 events)",
		"saved to disk",
		"acme/widgets@main",
		"auth failed (401)",
		"capture_1.jsonl",
		"1m0s",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHistoryPage_Empty(t *testing.T) {
	p := NewHistoryPage(history.NewMemoryStore(), false)
	view := p.View(testTheme(), 120, 40)
	if strings.Count(view, "none yet") != 2 || !strings.Contains(view, "in memory only") {
		t.Errorf("empty view:\n%s", view)
	}
	if cmd := p.Update(keyType(tea.KeyEnter)); cmd != nil {
		t.Error("enter with no captures should do nothing")
	}
}

func TestHistoryPage_ReloadsOnTick(t *testing.T) {
	store := history.NewMemoryStore()
	p := NewHistoryPage(store, false)

	store.RecordDownload(history.Download{Repo: "late/arrival@main", Status: history.StatusOK, At: time.Now()})
	p.Update(tickMsg(time.Now()))
	if !strings.Contains(p.View(testTheme(), 120, 40), "late/arrival@main") {
		t.Error("tick should reload the store")
	}
}

func TestHistoryPage_InspectCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	log := `{"t":0.1,"type":"mouse_move","x":1,"y":2}
{"t":0.5,"type":"key_press","key":"a"}
not json
{"t":1.6,"type":"key_release","key":"a"}
`
	if err := os.WriteFile(path, []byte(log), 0o644); err != nil {
		t.Fatal(err)
	}

	store := history.NewMemoryStore()
	now := time.Now()
	store.RecordCapture(history.CaptureSession{ID: "old", Path: "/nope.jsonl", StartedAt: now, EndedAt: now})
	store.RecordCapture(history.CaptureSession{ID: "new", Path: path, StartedAt: now, EndedAt: now.Add(time.Second)})

	p := NewHistoryPage(store, false)
	p.Focus()

	drive(p, p.Update(keyType(tea.KeyEnter)))
	if p.summary == nil {
		t.Fatalf("no summary, err = %v", p.err)
	}
	view := p.View(testTheme(), 120, 40)
	for _, want := range []string{"3 events over 1.5s", "key_press", "1 malformed lines skipped"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	p.Update(keyType(tea.KeyDown))
	drive(p, p.Update(keyType(tea.KeyEnter)))
	if p.err == nil {
		t.Error("inspecting a missing log should fail")
	}
}
