package themes

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
)

// ASCIITheme implements a plain theme for terminals without rounded box
// glyphs or true color
type ASCIITheme struct {
	*DefaultTheme
}

// NewASCIITheme creates a new ASCII-only theme
func NewASCIITheme() Theme {
	base := NewDefaultTheme().(*DefaultTheme)
	base.primary = lipgloss.Color("5")
	base.secondary = lipgloss.Color("13")
	base.success = lipgloss.Color("2")
	base.muted = lipgloss.Color("8")
	base.surface = lipgloss.Color("0")
	return &ASCIITheme{DefaultTheme: base}
}

func (t *ASCIITheme) Name() string { return "mono" }

// Override border styles to use ASCII characters
func (t *ASCIITheme) Border() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.muted)
}

func (t *ASCIITheme) BorderActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.primary)
}

func (t *ASCIITheme) Input() lipgloss.Style {
	return t.Border().Padding(0, 1)
}

func (t *ASCIITheme) InputActive() lipgloss.Style {
	return t.BorderActive().Padding(0, 1)
}

func (t *ASCIITheme) Cards() render.Styles {
	s := render.NewStyles(t.primary, t.success, t.muted)
	s.Card = s.Card.Border(lipgloss.NormalBorder())
	s.CardSelected = s.CardSelected.Border(lipgloss.NormalBorder())
	s.Dialog = s.Dialog.Border(lipgloss.NormalBorder())
	return s
}

func (t *ASCIITheme) MarkdownStyle() string { return "ascii" }
