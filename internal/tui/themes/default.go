package themes

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
)

// DefaultTheme implements the ShopForge default theme
type DefaultTheme struct {
	primary    lipgloss.Color
	secondary  lipgloss.Color
	background lipgloss.Color
	surface    lipgloss.Color
	foreground lipgloss.Color
	error      lipgloss.Color
	success    lipgloss.Color
	warning    lipgloss.Color
	info       lipgloss.Color
	muted      lipgloss.Color
}

// NewDefaultTheme creates a new default theme
func NewDefaultTheme() Theme {
	return &DefaultTheme{
		primary:    lipgloss.Color("#7C3AED"), // Violet
		secondary:  lipgloss.Color("#F472B6"), // Pink
		background: lipgloss.Color("#1E1B2E"),
		surface:    lipgloss.Color("#2A2540"),
		foreground: lipgloss.Color("#F5F3FF"),
		error:      lipgloss.Color("#F87171"),
		success:    lipgloss.Color("#10B981"), // Prices
		warning:    lipgloss.Color("#F59E0B"),
		info:       lipgloss.Color("#38BDF8"),
		muted:      lipgloss.Color("#6B7280"),
	}
}

func (t *DefaultTheme) Name() string { return DefaultName }

func (t *DefaultTheme) Base() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.foreground)
}

func (t *DefaultTheme) PrimaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.primary)
}

func (t *DefaultTheme) MutedText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.muted)
}

func (t *DefaultTheme) ErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.error)
}

func (t *DefaultTheme) SuccessText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.success)
}

func (t *DefaultTheme) Border() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.muted)
}

func (t *DefaultTheme) BorderActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.primary)
}

func (t *DefaultTheme) Input() lipgloss.Style {
	return t.Border().Padding(0, 1)
}

func (t *DefaultTheme) InputActive() lipgloss.Style {
	return t.BorderActive().Padding(0, 1)
}

func (t *DefaultTheme) DialogTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.primary).Bold(true)
}

func (t *DefaultTheme) ListItem() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.foreground)
}

func (t *DefaultTheme) ListItemSelected() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.primary).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.primary)
}

func (t *DefaultTheme) StatusBar() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.surface).Foreground(t.foreground)
}

func (t *DefaultTheme) StatusKey() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.primary).Foreground(t.foreground).Bold(true).Padding(0, 1)
}

func (t *DefaultTheme) StatusValue() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.surface).Foreground(t.foreground).Padding(0, 1)
}

func (t *DefaultTheme) Chip() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.secondary).Foreground(t.background).Padding(0, 1)
}

func (t *DefaultTheme) Cards() render.Styles {
	return render.NewStyles(t.primary, t.success, t.muted)
}

func (t *DefaultTheme) MarkdownStyle() string { return "dark" }

func (t *DefaultTheme) Primary() lipgloss.Color         { return t.primary }
func (t *DefaultTheme) BackgroundColor() lipgloss.Color { return t.background }
func (t *DefaultTheme) Error() lipgloss.Color           { return t.error }
func (t *DefaultTheme) Success() lipgloss.Color         { return t.success }
func (t *DefaultTheme) Warning() lipgloss.Color         { return t.warning }
func (t *DefaultTheme) Info() lipgloss.Color            { return t.info }
