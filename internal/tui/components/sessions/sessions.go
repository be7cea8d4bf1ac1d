package sessions

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
)

// SelectedMsg is sent when a session is picked
type SelectedMsg struct {
	ID string
}

// NewMsg asks for a fresh search session
type NewMsg struct{}

// DeleteMsg asks for a session to be removed
type DeleteMsg struct {
	ID string
}

// RenameMsg asks to start renaming a session
type RenameMsg struct {
	ID    string
	Title string
}

// sessionItem implements list.Item interface
type sessionItem struct {
	session *session.Session
}

func (i sessionItem) FilterValue() string { return i.session.Title }
func (i sessionItem) Title() string       { return i.session.Title }
func (i sessionItem) Description() string {
	return fmt.Sprintf("%d msgs • %d products • %s",
		len(i.session.ConversationHistory),
		len(i.session.Products),
		i.session.Timestamp.Format("Jan 2, 15:04"))
}

// sessionDelegate implements list.ItemDelegate
type sessionDelegate struct {
	theme     themes.Theme
	currentID string
}

func (d sessionDelegate) Height() int                         { return 2 }
func (d sessionDelegate) Spacing() int                        { return 1 }
func (d sessionDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d sessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(sessionItem)
	if !ok {
		return
	}
	width := max(m.Width()-3, 8)

	style := d.theme.ListItem()
	if index == m.Index() {
		style = d.theme.ListItemSelected()
	}
	title := i.Title()
	if i.session.ID == d.currentID {
		title = "● " + title
	}
	title = ansi.Truncate(title, width, "…")
	desc := d.theme.MutedText().Render(ansi.Truncate(i.Description(), width, "…"))
	fmt.Fprint(w, style.Render(title+"\n"+desc))
}

// Model is the session list sidebar
type Model struct {
	theme     themes.Theme
	list      list.Model
	width     int
	height    int
	focused   bool
	currentID string
}

// New creates the sidebar
func New(th themes.Theme) *Model {
	l := list.New(nil, sessionDelegate{theme: th}, 0, 0)
	l.Title = "Searches"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = th.DialogTitleStyle()
	return &Model{theme: th, list: l}
}

// SetTheme switches palettes
func (m *Model) SetTheme(th themes.Theme) {
	m.theme = th
	m.list.Styles.Title = th.DialogTitleStyle()
	m.list.SetDelegate(sessionDelegate{theme: th, currentID: m.currentID})
}

// SetSize sets the sidebar dimensions including its border
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.list.SetSize(max(width-2, 0), max(height-2, 0))
}

// Focus sets focus on the sessions list
func (m *Model) Focus() { m.focused = true }

// Blur removes focus from the sessions list
func (m *Model) Blur() { m.focused = false }

// Focused reports whether keys go to the list
func (m *Model) Focused() bool { return m.focused }

// Filtering reports whether the list's own filter prompt is taking input
func (m *Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

// SetSessions replaces the listed sessions
func (m *Model) SetSessions(all []*session.Session, currentID string) tea.Cmd {
	m.currentID = currentID
	items := make([]list.Item, 0, len(all))
	selected := 0
	for i, s := range all {
		items = append(items, sessionItem{session: s})
		if s.ID == currentID {
			selected = i
		}
	}
	m.list.SetDelegate(sessionDelegate{theme: m.theme, currentID: currentID})
	cmd := m.list.SetItems(items)
	m.list.Select(selected)
	return cmd
}

// Selected returns the highlighted session id
func (m *Model) Selected() string {
	if i, ok := m.list.SelectedItem().(sessionItem); ok {
		return i.session.ID
	}
	return ""
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		id := m.Selected()
		switch {
		case key.Matches(kmsg, keys.Select) && id != "":
			return m, func() tea.Msg { return SelectedMsg{ID: id} }
		case key.Matches(kmsg, keys.New):
			return m, func() tea.Msg { return NewMsg{} }
		case key.Matches(kmsg, keys.Delete) && id != "":
			return m, func() tea.Msg { return DeleteMsg{ID: id} }
		case key.Matches(kmsg, keys.Rename) && id != "":
			title := m.list.SelectedItem().(sessionItem).session.Title
			return m, func() tea.Msg { return RenameMsg{ID: id, Title: title} }
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	style := m.theme.Border()
	if m.focused {
		style = m.theme.BorderActive()
	}
	return style.Width(max(m.width-2, 0)).Height(max(m.height-2, 0)).Render(m.list.View())
}

type keyMap struct {
	Select key.Binding
	New    key.Binding
	Delete key.Binding
	Rename key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open search"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new search"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete search"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
}

// Help lists the sidebar's bindings
func Help() []key.Binding {
	return []key.Binding{keys.Select, keys.New, keys.Delete, keys.Rename}
}
