package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/jarviz/internal/settings"
)

// Base palette. Only the accent is user configurable.
const (
	colorBg     = lipgloss.Color("#070b12")
	colorPanel  = lipgloss.Color("#0f1a2d")
	colorLine   = lipgloss.Color("#1a2f4f")
	colorText   = lipgloss.Color("#dbe8ff")
	colorDim    = lipgloss.Color("#93add6")
	colorDanger = lipgloss.Color("#ff476f")
	colorOK     = lipgloss.Color("#2cffc8")
)

// Theme is the set of styles every view renders with. It is rebuilt whenever
// the settings change and handed to pages explicitly.
type Theme struct {
	Accent lipgloss.Color

	Header        lipgloss.Style
	Brand         lipgloss.Style
	Sidebar       lipgloss.Style
	NavItem       lipgloss.Style
	NavActive     lipgloss.Style
	NavSelected   lipgloss.Style
	H1            lipgloss.Style
	H2            lipgloss.Style
	Dim           lipgloss.Style
	Label         lipgloss.Style
	Card          lipgloss.Style
	Cursor        lipgloss.Style
	OK            lipgloss.Style
	Danger        lipgloss.Style
	Notice        lipgloss.Style
	PaletteBox    lipgloss.Style
	PaletteActive lipgloss.Style
}

// NewTheme builds the styles for s. An invalid accent falls back to the
// default.
func NewTheme(s settings.Settings) Theme {
	accentHex := s.Accent
	if settings.ValidateAccent(accentHex) != nil {
		accentHex = settings.DefaultAccent
	}
	accent := lipgloss.Color(accentHex)

	return Theme{
		Accent: accent,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPanel),

		Brand: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(colorLine).
			Padding(0, 1),

		NavItem: lipgloss.NewStyle().
			Foreground(colorText),

		NavActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		NavSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBg).
			Background(accent),

		H1: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		H2: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText),

		Dim: lipgloss.NewStyle().
			Foreground(colorDim),

		Label: lipgloss.NewStyle().
			Foreground(colorDim).
			Width(16),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLine).
			Padding(0, 1),

		Cursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBg).
			Background(accent),

		OK: lipgloss.NewStyle().
			Foreground(colorOK),

		Danger: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger),

		Notice: lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true),

		PaletteBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		PaletteActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
	}
}
