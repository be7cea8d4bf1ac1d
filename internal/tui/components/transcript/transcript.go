package transcript

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
)

// revealStep is how many runes each typing tick uncovers
const revealStep = 3

// Greeting is shown before the first message of a session
const Greeting = "Hi! Tell me what you are shopping for and I will find products for you."

// RevealTickMsg advances the typing animation
type RevealTickMsg struct {
	gen int
}

// Model shows a session's conversation
type Model struct {
	theme    themes.Theme
	viewport viewport.Model
	markdown *render.Markdown
	cache    *Cache
	messages []session.Message
	width    int
	height   int

	// typing reveal of the last assistant message
	revealing bool
	revealed  int
	gen       int
	delay     time.Duration
}

// New creates a transcript revealing assistant replies one step per delay.
// A zero delay shows replies at once.
func New(th themes.Theme, delay time.Duration) *Model {
	return &Model{
		theme:    th,
		viewport: viewport.New(0, 0),
		cache:    NewCache(0),
		delay:    delay,
	}
}

// SetTheme switches palettes
func (m *Model) SetTheme(th themes.Theme) {
	m.theme = th
	m.markdown = nil
	m.cache.Clear()
	m.refresh()
}

// SetSize sets the transcript dimensions
func (m *Model) SetSize(width, height int) {
	if width != m.width {
		m.markdown = nil
	}
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

// SetMessages replaces the transcript and stops any reveal in progress
func (m *Model) SetMessages(messages []session.Message) {
	m.messages = append([]session.Message(nil), messages...)
	m.revealing = false
	m.refresh()
	m.viewport.GotoBottom()
}

// Reveal animates the last assistant message
func (m *Model) Reveal() tea.Cmd {
	last := len(m.messages) - 1
	if m.delay <= 0 || last < 0 || m.messages[last].Role != session.RoleAssistant {
		return nil
	}
	m.gen++
	m.revealing = true
	m.revealed = 0
	m.refresh()
	return m.tick()
}

// Revealing reports whether the typing animation is running
func (m *Model) Revealing() bool {
	return m.revealing
}

// SkipReveal shows the full reply immediately
func (m *Model) SkipReveal() {
	if m.revealing {
		m.revealing = false
		m.refresh()
		m.viewport.GotoBottom()
	}
}

func (m *Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return RevealTickMsg{gen: gen}
	})
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RevealTickMsg:
		if !m.revealing || msg.gen != m.gen {
			return m, nil
		}
		m.revealed += revealStep
		if m.revealed >= len([]rune(m.messages[len(m.messages)-1].Content)) {
			m.revealing = false
		}
		m.refresh()
		m.viewport.GotoBottom()
		if m.revealing {
			return m, m.tick()
		}
		return m, nil
	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Content returns the rendered transcript
func (m *Model) Content() string {
	if len(m.messages) == 0 {
		return m.theme.MutedText().Render(Greeting)
	}
	blocks := make([]string, 0, len(m.messages))
	last := len(m.messages) - 1
	for i, msg := range m.messages {
		if i == last && m.revealing {
			blocks = append(blocks, m.renderPartial(msg))
			continue
		}
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderMessage(msg session.Message) string {
	if msg.Role == session.RoleUser {
		return m.theme.PrimaryText().Bold(true).Render("You") + "\n" +
			lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(msg.Content)
	}
	key := m.cache.Key(m.theme.Name(), m.width, msg.Content)
	if out, ok := m.cache.Get(key); ok {
		return out
	}
	out := m.theme.SuccessText().Bold(true).Render("Assistant") + "\n" + m.renderer().Render(msg.Content)
	m.cache.Set(key, out)
	return out
}

func (m *Model) renderPartial(msg session.Message) string {
	runes := []rune(msg.Content)
	text := string(runes[:min(m.revealed, len(runes))])
	return m.theme.SuccessText().Bold(true).Render("Assistant") + "\n" +
		lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(text+"▌")
}

func (m *Model) renderer() *render.Markdown {
	if m.markdown == nil {
		md, err := render.NewMarkdown(max(m.width-4, 20), m.theme.MarkdownStyle())
		if err != nil {
			log.Debug("falling back to plain transcript", "err", err)
		}
		m.markdown = md
	}
	return m.markdown
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.Content())
}

func (m *Model) View() string {
	return m.viewport.View()
}

// Len returns the number of messages shown
func (m *Model) Len() int {
	return len(m.messages)
}

// Messages returns the messages currently shown
func (m *Model) Messages() []session.Message {
	return m.messages
}
