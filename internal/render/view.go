package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Styles used by the terminal views
type Styles struct {
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Title        lipgloss.Style
	Muted        lipgloss.Style
	Price        lipgloss.Style
	ListPrice    lipgloss.Style
	Badge        lipgloss.Style
	Accent       lipgloss.Style
	Dialog       lipgloss.Style
}

// DefaultStyles is a neutral palette for terminals with color
func DefaultStyles() Styles {
	return NewStyles(lipgloss.Color("#7C3AED"), lipgloss.Color("#10B981"), lipgloss.Color("#6B7280"))
}

// NewStyles builds styles around a primary, success and muted color
func NewStyles(primary, success, muted lipgloss.TerminalColor) Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1)
	return Styles{
		Card:         card,
		CardSelected: card.BorderForeground(primary),
		Title:        lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(muted),
		Price:        lipgloss.NewStyle().Foreground(success).Bold(true),
		ListPrice:    lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		Badge:        lipgloss.NewStyle().Foreground(primary),
		Accent:       lipgloss.NewStyle().Foreground(primary).Bold(true),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primary).
			Padding(1, 2),
	}
}

// Markers shown on cards for collection membership
const (
	CartMarker     = "[cart]"
	FavoriteMarker = "[fav]"
)

// PriceLine renders the price with a struck list price when on sale
func (s Styles) PriceLine(c Card) string {
	line := s.Price.Render(c.Price)
	if c.OnSale() {
		line += " " + s.ListPrice.Render(c.ListPrice)
	}
	if c.Discount != "" {
		line += " " + s.Badge.Render(c.Discount)
	}
	return line
}

func (s Styles) markers(c Card) string {
	var m []string
	if c.InCart {
		m = append(m, CartMarker)
	}
	if c.Favorite {
		m = append(m, FavoriteMarker)
	}
	return strings.Join(m, " ")
}

// CardView renders one card boxed to width
func (s Styles) CardView(c Card, width int, selected bool) string {
	inner := max(width-4, 10)
	lines := []string{
		s.Title.Render(ansi.Truncate(c.Title, inner, "…")),
	}
	if c.Brand != "" {
		lines = append(lines, s.Muted.Render(ansi.Truncate(c.Brand, inner, "…")))
	}
	lines = append(lines, s.PriceLine(c))
	if c.Messaging != "" {
		lines = append(lines, s.Muted.Render(ansi.Truncate(c.Messaging, inner, "…")))
	}
	if m := s.markers(c); m != "" {
		lines = append(lines, s.Badge.Render(m))
	}

	style := s.Card
	if selected {
		style = s.CardSelected
	}
	return style.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

// GridView lays cards out in rows that fit width
func (s Styles) GridView(cards []Card, width, cardWidth, selected int) string {
	if len(cards) == 0 {
		return s.Muted.Render("No products to show")
	}
	perRow := max(width/cardWidth, 1)
	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		row := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, s.CardView(cards[i], cardWidth, i == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// ListLine renders a card as a single line for CLI listings
func (s Styles) ListLine(c Card, width int) string {
	line := fmt.Sprintf("%-12s %s  %s", c.ID, c.Title, s.PriceLine(c))
	if m := s.markers(c); m != "" {
		line += "  " + s.Badge.Render(m)
	}
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// Detail is the content of the quick view overlay
type Detail struct {
	Card            Card
	Description     string
	Colors          string
	Sizes           string
	Recommendations []Card
	Loading         bool
	Err             error
}

// DetailView renders the quick view. Description is expected to be
// already rendered markdown.
func (s Styles) DetailView(d Detail, width int) string {
	inner := max(width-6, 20)
	c := d.Card
	lines := []string{
		s.Accent.Render(ansi.Truncate(c.Title, inner, "…")),
	}
	if c.Brand != "" {
		lines = append(lines, s.Muted.Render(c.Brand))
	}
	lines = append(lines, s.PriceLine(c), "")
	if d.Description != "" {
		lines = append(lines, d.Description, "")
	}
	if d.Colors != "" {
		lines = append(lines, s.Muted.Render("Colors: ")+d.Colors)
	}
	if d.Sizes != "" {
		lines = append(lines, s.Muted.Render("Sizes: ")+d.Sizes)
	}
	lines = append(lines, s.Muted.Render("Image: ")+c.Image)
	if c.URL != "" {
		lines = append(lines, s.Muted.Render("Link: ")+c.URL)
	}
	if m := s.markers(c); m != "" {
		lines = append(lines, s.Badge.Render(m))
	}

	lines = append(lines, "", s.Title.Render("You may also like"))
	switch {
	case d.Loading:
		lines = append(lines, s.Muted.Render("Loading recommendations…"))
	case d.Err != nil:
		lines = append(lines, s.Muted.Render("Recommendations unavailable"))
	case len(d.Recommendations) == 0:
		lines = append(lines, s.Muted.Render("No recommendations available for this product"))
	default:
		for _, rec := range d.Recommendations {
			lines = append(lines, "• "+ansi.Truncate(rec.Title, inner-16, "…")+"  "+s.PriceLine(rec))
		}
	}

	return s.Dialog.Width(inner).Render(strings.Join(lines, "\n"))
}
