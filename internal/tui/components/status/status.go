package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
)

// Model represents the status bar component
type Model struct {
	theme   themes.Theme
	width   int
	spinner spinner.Model
	snap    app.Snapshot
	hint    string
}

// NewStatusBar creates a new status bar component
func NewStatusBar(th themes.Theme) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = th.PrimaryText()
	return &Model{theme: th, spinner: s}
}

// Tick starts the spinner
func (m *Model) Tick() tea.Msg {
	return m.spinner.Tick()
}

// Update handles messages for the status bar
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case spinner.TickMsg:
		if !m.snap.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetWidth sets the width of the status bar
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetTheme switches palettes
func (m *Model) SetTheme(th themes.Theme) {
	m.theme = th
	m.spinner.Style = th.PrimaryText()
}

// SetSnapshot updates the state shown in the bar
func (m *Model) SetSnapshot(snap app.Snapshot) {
	m.snap = snap
}

// SetHint sets the key help shown on the right
func (m *Model) SetHint(hint string) {
	m.hint = hint
}

func (m *Model) logo() string {
	return m.theme.StatusKey().Render("ShopForge")
}

// Badges renders the cart and favorites counters
func Badges(cartCount, favoritesCount int) string {
	return fmt.Sprintf("Cart %d  Favorites %d", cartCount, favoritesCount)
}

// Chips renders active filters as chips
func (m *Model) Chips() string {
	if len(m.snap.ActiveFilters) == 0 {
		return ""
	}
	chips := make([]string, 0, len(m.snap.ActiveFilters))
	for _, tag := range m.snap.ActiveFilters {
		chips = append(chips, m.theme.Chip().Render(string(tag)))
	}
	return strings.Join(chips, " ")
}

// View renders the status bar
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	left := m.logo()
	title := "No search yet"
	if m.snap.Session != nil {
		title = m.snap.Session.Title
	}
	state := title
	if m.snap.Busy {
		state = m.spinner.View() + " Searching…"
	}
	left += m.theme.StatusValue().Render(ansi.Truncate(state, max(m.width/3, 10), "…"))
	if chips := m.Chips(); chips != "" {
		left += " " + chips
	}

	right := m.theme.StatusValue().Render(Badges(m.snap.CartCount, m.snap.FavoritesCount))
	if m.hint != "" {
		right = m.theme.StatusValue().Foreground(m.theme.Info()).Render(m.hint) + right
	}

	space := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + m.theme.StatusBar().Width(space).Render("") + right
	return ansi.Truncate(line, m.width, "")
}
