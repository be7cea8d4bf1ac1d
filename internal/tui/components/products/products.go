package products

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/shopforge/internal/filter"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
)

// Messages emitted for the highlighted product
type (
	QuickViewMsg    struct{ ID string }
	ToggleCartMsg   struct{ ID string }
	ToggleFavMsg    struct{ ID string }
	OpenPageMsg     struct{ ID string }
	ToggleFilterMsg struct{ Tag filter.Tag }
	ClearFiltersMsg struct{}
)

type cardItem struct {
	card render.Card
}

func (i cardItem) FilterValue() string { return i.card.Title }

type cardDelegate struct {
	styles render.Styles
}

func (d cardDelegate) Height() int                         { return 2 }
func (d cardDelegate) Spacing() int                        { return 1 }
func (d cardDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(cardItem)
	if !ok {
		return
	}
	width := max(m.Width()-2, 10)
	c := i.card

	cursor := "  "
	title := d.styles.Title
	if index == m.Index() {
		cursor = d.styles.Accent.Render("▸ ")
		title = d.styles.Accent
	}
	first := cursor + title.Render(ansi.Truncate(c.Title, width-18, "…"))
	if markers := markerText(c); markers != "" {
		first += " " + d.styles.Badge.Render(markers)
	}
	second := "  " + d.styles.PriceLine(c)
	if c.Brand != "" {
		second += "  " + d.styles.Muted.Render(c.Brand)
	}
	fmt.Fprint(w, ansi.Truncate(first, width, "…")+"\n"+ansi.Truncate(second, width, "…"))
}

func markerText(c render.Card) string {
	switch {
	case c.InCart && c.Favorite:
		return render.CartMarker + " " + render.FavoriteMarker
	case c.InCart:
		return render.CartMarker
	case c.Favorite:
		return render.FavoriteMarker
	}
	return ""
}

// Model is the product results panel
type Model struct {
	theme     themes.Theme
	list      list.Model
	width     int
	height    int
	focused   bool
	noMatches bool
}

// New creates an empty product panel
func New(th themes.Theme) *Model {
	l := list.New(nil, cardDelegate{styles: th.Cards()}, 0, 0)
	l.Title = "Products"
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("product", "products")
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = th.DialogTitleStyle()
	return &Model{theme: th, list: l}
}

// SetTheme switches palettes
func (m *Model) SetTheme(th themes.Theme) {
	m.theme = th
	m.list.Styles.Title = th.DialogTitleStyle()
	m.list.SetDelegate(cardDelegate{styles: th.Cards()})
}

// SetSize sets the panel dimensions including its border
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.list.SetSize(max(width-2, 0), max(height-2, 0))
}

func (m *Model) Focus()        { m.focused = true }
func (m *Model) Blur()         { m.focused = false }
func (m *Model) Focused() bool { return m.focused }

// SetProducts shows products, keeping the highlight on the same product
// when it survives
func (m *Model) SetProducts(products []product.Product, membership render.Membership, noMatches bool) tea.Cmd {
	previous := m.Selected()
	m.noMatches = noMatches
	cards := render.Cards(products, membership)
	items := make([]list.Item, 0, len(cards))
	selected := 0
	for i, c := range cards {
		items = append(items, cardItem{card: c})
		if previous != "" && product.NormalizeID(c.ID) == product.NormalizeID(previous) {
			selected = i
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(selected)
	return cmd
}

// Len returns how many products are listed
func (m *Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the highlighted product id
func (m *Model) Selected() string {
	if i, ok := m.list.SelectedItem().(cardItem); ok {
		return i.card.ID
	}
	return ""
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if cmd := m.handleKey(kmsg); cmd != nil {
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Filter) {
		n, _ := strconv.Atoi(msg.String())
		tags := filter.Tags()
		if n >= 1 && n <= len(tags) {
			tag := tags[n-1].Tag
			return func() tea.Msg { return ToggleFilterMsg{Tag: tag} }
		}
		return nil
	}
	if key.Matches(msg, keys.ClearFilters) {
		return func() tea.Msg { return ClearFiltersMsg{} }
	}

	id := m.Selected()
	if id == "" {
		return nil
	}
	switch {
	case key.Matches(msg, keys.QuickView):
		return func() tea.Msg { return QuickViewMsg{ID: id} }
	case key.Matches(msg, keys.Cart):
		return func() tea.Msg { return ToggleCartMsg{ID: id} }
	case key.Matches(msg, keys.Favorite):
		return func() tea.Msg { return ToggleFavMsg{ID: id} }
	case key.Matches(msg, keys.Open):
		return func() tea.Msg { return OpenPageMsg{ID: id} }
	}
	return nil
}

func (m *Model) View() string {
	style := m.theme.Border()
	if m.focused {
		style = m.theme.BorderActive()
	}
	inner := max(m.width-2, 0)
	var body string
	switch {
	case m.Len() > 0:
		body = m.list.View()
	case m.noMatches:
		body = m.theme.MutedText().Render("No products match the active filters.\nPress x to clear them.")
	default:
		body = m.theme.MutedText().Render("Ask for something to see products here.")
	}
	return style.Width(inner).Height(max(m.height-2, 0)).Render(body)
}

type keyMap struct {
	QuickView    key.Binding
	Cart         key.Binding
	Favorite     key.Binding
	Open         key.Binding
	Filter       key.Binding
	ClearFilters key.Binding
}

var keys = keyMap{
	QuickView: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "quick view"),
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
	Filter: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6"),
		key.WithHelp("1-6", "filters"),
	),
	ClearFilters: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
}

// Help lists the panel's bindings
func Help() []key.Binding {
	return []key.Binding{keys.QuickView, keys.Cart, keys.Favorite, keys.Open, keys.Filter, keys.ClearFilters}
}
