package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/jarviz/internal/coding"
	"github.com/nixlim/jarviz/internal/registry"
)

// codingInput is what a tool sees when it runs.
type codingInput struct {
	text     string
	pattern  string
	repl     string
	flags    coding.RegexFlags
	indent   int
	sortKeys bool
	now      time.Time
	loc      *time.Location
}

type codingTool struct {
	name  string
	regex bool
	run   func(in codingInput) (string, error)
}

func codingTools() []codingTool {
	tools := []codingTool{
		{name: "JSON: format", run: func(in codingInput) (string, error) {
			return coding.FormatJSON(in.text, in.indent, in.sortKeys)
		}},
		{name: "JSON: minify", run: func(in codingInput) (string, error) {
			return coding.MinifyJSON(in.text)
		}},
		{name: "JSON: to YAML", run: func(in codingInput) (string, error) {
			return coding.JSONToYAML(in.text)
		}},
		{name: "Regex: find", regex: true, run: func(in codingInput) (string, error) {
			res, err := coding.Find(in.pattern, in.text, in.flags)
			if err != nil {
				return "", err
			}
			return res.String(), nil
		}},
		{name: "Regex: substitute", regex: true, run: func(in codingInput) (string, error) {
			return coding.Substitute(in.pattern, in.repl, in.text, in.flags)
		}},
		{name: "Base64: encode", run: func(in codingInput) (string, error) {
			return coding.Base64Encode(in.text), nil
		}},
		{name: "Base64: decode", run: func(in codingInput) (string, error) {
			return coding.Base64Decode(in.text)
		}},
	}
	for _, alg := range coding.HashAlgorithms {
		tools = append(tools, codingTool{name: "Hash: " + alg, run: func(in codingInput) (string, error) {
			return coding.Hash(alg, in.text)
		}})
	}
	return append(tools,
		codingTool{name: "UUID v4", run: func(codingInput) (string, error) {
			return coding.NewUUID(), nil
		}},
		codingTool{name: "Time: now", run: func(in codingInput) (string, error) {
			return fmt.Sprintf("%s\n%d", coding.FormatTimestamp(in.now, in.loc), in.now.Unix()), nil
		}},
		codingTool{name: "Time: epoch to timestamp", run: func(in codingInput) (string, error) {
			return coding.EpochToTimestamp(in.text, in.loc)
		}},
		codingTool{name: "Time: timestamp to epoch", run: func(in codingInput) (string, error) {
			n, err := coding.TimestampToEpoch(in.text, in.loc)
			if err != nil {
				return "", err
			}
			return strconv.FormatInt(n, 10), nil
		}},
	)
}

const (
	codingFocusText = iota
	codingFocusPattern
	codingFocusRepl
)

var (
	flagIgnoreCase = key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "ignore case"))
	flagMultiline  = key.NewBinding(key.WithKeys("alt+m"), key.WithHelp("alt+m", "multiline"))
	flagDotAll     = key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "dot all"))
	flagSortKeys   = key.NewBinding(key.WithKeys("alt+k"), key.WithHelp("alt+k", "sort keys"))
	flagIndent     = key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "indent 2/4"))
)

// CodingPage bundles small text utilities behind a tool picker.
type CodingPage struct {
	keys  KeyMap
	tools []codingTool
	tool  int
	now   func() time.Time
	loc   *time.Location

	text    textarea.Model
	pattern textinput.Model
	repl    textinput.Model
	focus   int
	focused bool

	flags    coding.RegexFlags
	indent   int
	sortKeys bool

	output string
	err    error
}

func NewCodingPage() *CodingPage {
	ta := textarea.New()
	ta.Placeholder = "Input text"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(inputWidth + 16)
	ta.SetHeight(6)

	return &CodingPage{
		keys:     DefaultKeyMap(),
		tools:    codingTools(),
		now:      time.Now,
		loc:      time.Local,
		text:     ta,
		pattern:  newInput(`regex pattern, e.g. (\w+)@(\w+)`, ""),
		repl:     newInput(`replacement, \1 or \g<name> for groups`, ""),
		indent:   2,
		sortKeys: true,
	}
}

func (p *CodingPage) ID() string    { return PageCoding }
func (p *CodingPage) Title() string { return "Coding Helper" }

func (p *CodingPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "open_coding_helper",
		Title:    "Coding Helper",
		Keywords: []string{"coding", "helper", "json", "regex", "base64", "hash", "uuid", "timestamp", "epoch", "format"},
		PageID:   PageCoding,
	})
}

func (p *CodingPage) Init() tea.Cmd { return nil }

func (p *CodingPage) Focus() tea.Cmd {
	p.focused = true
	return p.focusField(p.focus)
}

func (p *CodingPage) Blur() {
	p.focused = false
	p.text.Blur()
	p.pattern.Blur()
	p.repl.Blur()
}

// fieldCount is the number of focusable fields for the current tool.
func (p *CodingPage) fieldCount() int {
	if p.tools[p.tool].regex {
		return 3
	}
	return 1
}

func (p *CodingPage) focusField(i int) tea.Cmd {
	p.text.Blur()
	p.pattern.Blur()
	p.repl.Blur()
	p.focus = i
	if !p.focused {
		return nil
	}
	switch i {
	case codingFocusPattern:
		return p.pattern.Focus()
	case codingFocusRepl:
		return p.repl.Focus()
	}
	return p.text.Focus()
}

func (p *CodingPage) selectTool(delta int) tea.Cmd {
	p.tool = (p.tool + delta + len(p.tools)) % len(p.tools)
	p.output, p.err = "", nil
	if p.focus >= p.fieldCount() {
		return p.focusField(codingFocusText)
	}
	return nil
}

// Run executes the selected tool on the current inputs.
func (p *CodingPage) Run() {
	in := codingInput{
		text:     p.text.Value(),
		pattern:  p.pattern.Value(),
		repl:     p.repl.Value(),
		flags:    p.flags,
		indent:   p.indent,
		sortKeys: p.sortKeys,
		now:      p.now(),
		loc:      p.loc,
	}
	p.output, p.err = p.tools[p.tool].run(in)
}

func (p *CodingPage) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, p.keys.PageUp):
		return p.selectTool(-1)
	case key.Matches(km, p.keys.PageDown):
		return p.selectTool(1)
	case key.Matches(km, p.keys.NextField):
		return p.focusField((p.focus + 1) % p.fieldCount())
	case key.Matches(km, p.keys.PrevField):
		return p.focusField((p.focus - 1 + p.fieldCount()) % p.fieldCount())
	case key.Matches(km, p.keys.Run):
		p.Run()
		return nil
	case key.Matches(km, flagIgnoreCase):
		p.flags.IgnoreCase = !p.flags.IgnoreCase
		return nil
	case key.Matches(km, flagMultiline):
		p.flags.Multiline = !p.flags.Multiline
		return nil
	case key.Matches(km, flagDotAll):
		p.flags.DotAll = !p.flags.DotAll
		return nil
	case key.Matches(km, flagSortKeys):
		p.sortKeys = !p.sortKeys
		return nil
	case key.Matches(km, flagIndent):
		if p.indent == 2 {
			p.indent = 4
		} else {
			p.indent = 2
		}
		return nil
	}

	var cmd tea.Cmd
	switch p.focus {
	case codingFocusPattern:
		p.pattern, cmd = p.pattern.Update(km)
	case codingFocusRepl:
		p.repl, cmd = p.repl.Update(km)
	default:
		p.text, cmd = p.text.Update(km)
	}
	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (p *CodingPage) View(th Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(th.H1.Render("Coding Helper"))
	b.WriteString("\n")
	b.WriteString(th.Dim.Render("Utilities for quick formatting, encoding, hashing, regex testing, and timestamps."))
	b.WriteString("\n\n")

	tool := p.tools[p.tool]
	b.WriteString(th.Label.Render("Tool") + th.PaletteActive.Render(tool.name))
	b.WriteString(th.Dim.Render(fmt.Sprintf("  (%d/%d, pgup/pgdown)", p.tool+1, len(p.tools))))
	b.WriteString("\n")

	switch {
	case tool.regex:
		b.WriteString(th.Label.Render("Pattern") + p.pattern.View() + "\n")
		if tool.name == "Regex: substitute" {
			b.WriteString(th.Label.Render("Replacement") + p.repl.View() + "\n")
		}
		b.WriteString(th.Dim.Render(fmt.Sprintf("ignore case %s (alt+i) · multiline %s (alt+m) · dot all %s (alt+s)",
			onOff(p.flags.IgnoreCase), onOff(p.flags.Multiline), onOff(p.flags.DotAll))))
		b.WriteString("\n")
	case strings.HasPrefix(tool.name, "JSON: format"):
		b.WriteString(th.Dim.Render(fmt.Sprintf("indent %d (alt+w) · sort keys %s (alt+k)", p.indent, onOff(p.sortKeys))))
		b.WriteString("\n")
	}

	b.WriteString(p.text.View())
	b.WriteString("\n")
	b.WriteString(th.Dim.Render("ctrl+r run · tab next field"))
	b.WriteString("\n\n")

	switch {
	case p.err != nil:
		b.WriteString(th.Danger.Render(p.err.Error()))
	case p.output != "":
		out := lipgloss.NewStyle().MaxWidth(max(width-4, 20)).Render(p.output)
		b.WriteString(th.Card.Render(out))
	}
	return b.String()
}
