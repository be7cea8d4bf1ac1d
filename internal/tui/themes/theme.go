package themes

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
)

// DefaultName is the theme used when none is configured
const DefaultName = "shopforge"

// Theme defines the interface for TUI themes
type Theme interface {
	Name() string

	// Base styles
	Base() lipgloss.Style

	// Text styles
	PrimaryText() lipgloss.Style
	MutedText() lipgloss.Style
	ErrorText() lipgloss.Style
	SuccessText() lipgloss.Style

	// UI element styles
	Border() lipgloss.Style
	BorderActive() lipgloss.Style
	Input() lipgloss.Style
	InputActive() lipgloss.Style
	DialogTitleStyle() lipgloss.Style

	// List styles
	ListItem() lipgloss.Style
	ListItemSelected() lipgloss.Style

	// Status styles
	StatusBar() lipgloss.Style
	StatusKey() lipgloss.Style
	StatusValue() lipgloss.Style
	Chip() lipgloss.Style

	// Cards styles product cards and the quick view
	Cards() render.Styles
	// MarkdownStyle is a glamour standard style name, empty for auto
	MarkdownStyle() string

	// Colors
	Primary() lipgloss.Color
	BackgroundColor() lipgloss.Color
	Error() lipgloss.Color
	Success() lipgloss.Color
	Warning() lipgloss.Color
	Info() lipgloss.Color
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Theme{}
)

// Register makes a theme selectable by name
func Register(t Theme) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Name()] = t
}

// Get returns the named theme, or the default one when the name is unknown
func Get(name string) Theme {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if t, ok := registry[name]; ok {
		return t
	}
	return registry[DefaultName]
}

// Names lists the registered themes
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(NewDefaultTheme())
	Register(NewASCIITheme())
}
