package toast

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/layout"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
	"github.com/google/uuid"
)

// DefaultDuration is how long a toast stays up
const DefaultDuration = 4 * time.Second

// maxToasts is how many toasts are stacked at once; older ones drop off
const maxToasts = 3

// ShowToastMsg is a message to display a toast notification
type ShowToastMsg struct {
	Message  string
	Title    string
	Color    lipgloss.Color
	Duration time.Duration
}

// DismissToastMsg is a message to dismiss a specific toast
type DismissToastMsg struct {
	ID string
}

// Toast represents a single toast notification
type Toast struct {
	ID        string
	Message   string
	Title     string
	Color     lipgloss.Color
	CreatedAt time.Time
}

// ToastManager manages multiple toast notifications
type ToastManager struct {
	toasts []Toast
	theme  themes.Theme
}

// NewToastManager creates a new toast manager
func NewToastManager(th themes.Theme) *ToastManager {
	return &ToastManager{theme: th}
}

// SetTheme switches the palette used for new toasts
func (tm *ToastManager) SetTheme(th themes.Theme) {
	tm.theme = th
}

// Update handles messages for the toast manager
func (tm *ToastManager) Update(msg tea.Msg) (*ToastManager, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		t := Toast{
			ID:        uuid.NewString(),
			Title:     msg.Title,
			Message:   msg.Message,
			Color:     msg.Color,
			CreatedAt: time.Now(),
		}
		tm.toasts = append(tm.toasts, t)
		if len(tm.toasts) > maxToasts {
			tm.toasts = tm.toasts[len(tm.toasts)-maxToasts:]
		}

		duration := msg.Duration
		if duration <= 0 {
			duration = DefaultDuration
		}
		return tm, tea.Tick(duration, func(time.Time) tea.Msg {
			return DismissToastMsg{ID: t.ID}
		})

	case DismissToastMsg:
		kept := tm.toasts[:0]
		for _, t := range tm.toasts {
			if t.ID != msg.ID {
				kept = append(kept, t)
			}
		}
		tm.toasts = kept
	}
	return tm, nil
}

// Toasts returns the toasts currently showing
func (tm *ToastManager) Toasts() []Toast {
	return append([]Toast(nil), tm.toasts...)
}

func (tm *ToastManager) renderSingleToast(t Toast, width int) string {
	maxWidth := max(30, width/3)
	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Color).
		Width(maxWidth)

	var content strings.Builder
	if t.Title != "" {
		content.WriteString(lipgloss.NewStyle().Foreground(t.Color).Bold(true).Render(t.Title))
		content.WriteString("\n")
	}
	content.WriteString(t.Message)
	return style.Render(content.String())
}

// View renders all active toasts
func (tm *ToastManager) View(width int) string {
	if len(tm.toasts) == 0 {
		return ""
	}
	views := make([]string, 0, len(tm.toasts))
	for _, t := range tm.toasts {
		views = append(views, tm.renderSingleToast(t, width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, views...)
}

// RenderOverlay renders the toasts in the top-right corner of background
func (tm *ToastManager) RenderOverlay(width, height int, background string) string {
	view := tm.View(width)
	if view == "" {
		return background
	}
	return layout.PlaceOverlay(width, height, view, background, layout.TopRight)
}

func newToast(message, title string, color lipgloss.Color) tea.Cmd {
	return func() tea.Msg {
		return ShowToastMsg{Message: message, Title: title, Color: color, Duration: DefaultDuration}
	}
}

func NewInfoToast(message string, th themes.Theme) tea.Cmd {
	return newToast(message, "", th.Info())
}

func NewSuccessToast(message string, th themes.Theme) tea.Cmd {
	return newToast(message, "", th.Success())
}

func NewWarningToast(message string, th themes.Theme) tea.Cmd {
	return newToast(message, "", th.Warning())
}

func NewErrorToast(message string, th themes.Theme) tea.Cmd {
	return newToast(message, "Error", th.Error())
}
