package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// Key bindings
type keyMap struct {
	Quit          key.Binding
	Submit        key.Binding
	NextFocus     key.Binding
	PrevFocus     key.Binding
	NewSearch     key.Binding
	ToggleSidebar key.Binding
	Theme         key.Binding
	OpenCart      key.Binding
	Help          key.Binding
	Cancel        key.Binding
	Scroll        key.Binding
	Cart          key.Binding
	Favorite      key.Binding
	Open          key.Binding
	CopyLink      key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+q"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	NextFocus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next pane"),
	),
	PrevFocus: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous pane"),
	),
	NewSearch: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "new search"),
	),
	ToggleSidebar: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("ctrl+b", "sidebar"),
	),
	Theme: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "theme"),
	),
	OpenCart: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "open cart links"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "help"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Scroll: key.NewBinding(
		key.WithKeys("pgup", "pgdown"),
		key.WithHelp("pgup/pgdn", "scroll chat"),
	),
	Cart: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cart"),
	),
	Favorite: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "favorite"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open page"),
	),
	CopyLink: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
}

func (k keyMap) global() []key.Binding {
	return []key.Binding{k.Submit, k.NextFocus, k.NewSearch, k.ToggleSidebar, k.Theme, k.OpenCart, k.Scroll, k.Quit}
}

func (k keyMap) quickView() []key.Binding {
	return []key.Binding{k.Cart, k.Favorite, k.Open, k.CopyLink, k.Cancel}
}
