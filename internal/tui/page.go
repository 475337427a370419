package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/jarviz/internal/registry"
	"github.com/nixlim/jarviz/internal/settings"
)

// Page is one tool screen behind the sidebar.
//
// Update receives every non-key message so background work started by a page
// reaches it even while another page is shown. Key messages are delivered
// only while the page holds keyboard focus.
type Page interface {
	ID() string
	Title() string
	RegisterActions(r *registry.Registry)

	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(th Theme, width, height int) string

	// Focus is called when the page gains keyboard focus, Blur when it
	// loses it.
	Focus() tea.Cmd
	Blur()
}

// OpenPageMsg asks the shell to show the page with the given ID.
type OpenPageMsg struct {
	ID string
}

// SettingsChangedMsg carries settings re-read from disk or just saved.
type SettingsChangedMsg struct {
	Settings settings.Settings
	Err      error
}

// NoticeMsg shows a one-line message in the footer.
type NoticeMsg struct {
	Text string
	Err  bool
}

type tickMsg time.Time

func openPage(id string) tea.Cmd {
	return func() tea.Msg { return OpenPageMsg{ID: id} }
}

func notice(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text, Err: isErr} }
}

// waitFor reads the next message a background goroutine produced. It returns
// nil once the channel is closed.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
