package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nixlim/jarviz/internal/capture"
	"github.com/nixlim/jarviz/internal/history"
	"github.com/nixlim/jarviz/internal/registry"
)

const historyRows = 8

type captureSummaryMsg struct {
	path    string
	summary capture.LogSummary
	err     error
}

// HistoryPage lists recent downloads and capture sessions.
type HistoryPage struct {
	keys       KeyMap
	store      history.Store
	persistent bool
	now        func() time.Time

	totals    history.Totals
	downloads []history.Download
	captures  []history.CaptureSession
	cursor    int
	focused   bool

	inspected string
	summary   *capture.LogSummary
	err       error
}

// NewHistoryPage creates the history page. persistent reports whether store
// survives restarts and is only used for display.
func NewHistoryPage(store history.Store, persistent bool) *HistoryPage {
	p := &HistoryPage{
		keys:       DefaultKeyMap(),
		store:      store,
		persistent: persistent,
		now:        time.Now,
	}
	p.reload()
	return p
}

func (p *HistoryPage) ID() string    { return PageHistory }
func (p *HistoryPage) Title() string { return "History" }

func (p *HistoryPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "open_history",
		Title:    "Download and capture history",
		Keywords: []string{"history", "downloads", "captures", "sessions", "log"},
		PageID:   PageHistory,
	})
}

func (p *HistoryPage) Init() tea.Cmd { return nil }

func (p *HistoryPage) Focus() tea.Cmd {
	p.focused = true
	p.reload()
	return nil
}

func (p *HistoryPage) Blur() { p.focused = false }

func (p *HistoryPage) reload() {
	p.totals = p.store.Totals()
	p.downloads = p.store.RecentDownloads(historyRows)
	p.captures = p.store.RecentCaptures(historyRows)
	if p.cursor >= len(p.captures) {
		p.cursor = max(len(p.captures)-1, 0)
	}
}

func (p *HistoryPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tickMsg:
		p.reload()
		return nil

	case captureSummaryMsg:
		p.inspected = msg.path
		p.err = msg.err
		p.summary = nil
		if msg.err == nil {
			s := msg.summary
			p.summary = &s
		}
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.captures)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keys.Enter):
			if p.cursor < len(p.captures) {
				return inspectCapture(p.captures[p.cursor].Path)
			}
		}
	}
	return nil
}

func inspectCapture(path string) tea.Cmd {
	return func() tea.Msg {
		s, err := capture.Summarize(path)
		return captureSummaryMsg{path: path, summary: s, err: err}
	}
}

func (p *HistoryPage) View(th Theme, width, height int) string {
	now := p.now()

	var b strings.Builder
	b.WriteString(th.H1.Render("History"))
	b.WriteString("\n")
	storage := "in memory only"
	if p.persistent {
		storage = "saved to disk"
	}
	t := p.totals
	b.WriteString(th.Dim.Render(fmt.Sprintf("%d downloads (%d failed, %s) · %d captures (%s events) · %s",
		t.Downloads, t.FailedDownloads, humanize.Bytes(uint64(t.Bytes)),
		t.Captures, humanize.Comma(int64(t.Events)), storage)))
	b.WriteString("\n\n")

	b.WriteString(th.H2.Render("Downloads"))
	b.WriteString("\n")
	if len(p.downloads) == 0 {
		b.WriteString(th.Dim.Render("  none yet") + "\n")
	}
	for _, d := range p.downloads {
		when := humanize.RelTime(d.At, now, "ago", "from now")
		if d.Status == history.StatusFailed {
			b.WriteString(th.Danger.Render(fmt.Sprintf("  %-12s %-32s %s", when, d.Repo, d.Error)))
		} else {
			b.WriteString(fmt.Sprintf("  %-12s %-32s %8s", when, d.Repo, humanize.Bytes(uint64(d.Bytes))))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + th.H2.Render("Capture sessions"))
	b.WriteString("\n")
	if len(p.captures) == 0 {
		b.WriteString(th.Dim.Render("  none yet") + "\n")
	}
	for i, c := range p.captures {
		line := fmt.Sprintf("%-12s %-28s %6s events  %s",
			humanize.RelTime(c.EndedAt, now, "ago", "from now"),
			filepath.Base(c.Path),
			humanize.Comma(int64(c.Events)),
			c.Duration().Round(time.Second))
		if p.focused && i == p.cursor {
			b.WriteString(th.Cursor.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(p.captures) > 0 {
		b.WriteString(th.Dim.Render("enter inspect selected log") + "\n")
	}

	switch {
	case p.err != nil:
		b.WriteString("\n" + th.Danger.Render(p.err.Error()))
	case p.summary != nil:
		b.WriteString("\n" + th.Card.Render(renderLogSummary(p.inspected, *p.summary)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLogSummary(path string, s capture.LogSummary) string {
	lines := []string{
		filepath.Base(path),
		fmt.Sprintf("%s events over %.1fs", humanize.Comma(int64(s.Total)), s.Duration()),
	}
	types := make([]string, 0, len(s.Counts))
	for t := range s.Counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		lines = append(lines, fmt.Sprintf("  %-13s %s", t, humanize.Comma(int64(s.Counts[capture.EventType(t)]))))
	}
	if s.Malformed > 0 {
		lines = append(lines, fmt.Sprintf("  %d malformed lines skipped", s.Malformed))
	}
	return strings.Join(lines, "\n")
}
