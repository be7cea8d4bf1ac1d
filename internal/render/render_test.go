package render

import (
	"errors"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type members struct {
	cart, favs map[string]bool
	reads      int
}

func (m *members) InCart(id string) bool     { m.reads++; return m.cart[id] }
func (m *members) IsFavorite(id string) bool { m.reads++; return m.favs[id] }

func TestTitleProbing(t *testing.T) {
	assert.Equal(t, "Polo", Title(product.Product{Name: "Polo", Description: "d"}))
	assert.Equal(t, "Soft cotton", Title(product.Product{Name: "  ", Description: "Soft cotton"}))
	assert.Equal(t, "Shirts", Title(product.Product{Category: "Shirts"}))
	assert.Equal(t, DefaultTitle, Title(product.Product{}))
}

func TestSameProductRendersIdenticallyAcrossFieldSets(t *testing.T) {
	a := product.NormalizeJSON([]byte(`{"id":"1","name":"Polo","price":"$45.00","image_url":"https://img.test/a.png"}`))
	b := product.NormalizeJSON([]byte(`{"product_id":"1","title":"Polo","current_price":45,"image":"https://img.test/a.png"}`))
	assert.Equal(t, NewCard(0, a, nil), NewCard(0, b, nil))
}

func TestImageFallback(t *testing.T) {
	assert.Equal(t, PlaceholderImage, Image(product.Product{}))
	assert.Equal(t, PlaceholderImage, Image(product.Product{ImageURL: "not a url"}))
	assert.Equal(t, PlaceholderImage, Image(product.Product{ImageURL: "ftp://x/y.png"}))
	assert.Equal(t, "https://img.test/a.png", Image(product.Product{ImageURL: " https://img.test/a.png "}))
}

func TestPriceFormatting(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatPrice(1234.5))

	sale := NewCard(0, product.Product{ID: "s", Price: 75, ListPrice: 100}, nil)
	assert.Equal(t, "$75.00", sale.Price)
	assert.Equal(t, "$100.00", sale.ListPrice)
	assert.Equal(t, "25% off", sale.Discount)
	assert.True(t, sale.OnSale())

	missing := NewCard(0, product.Product{ID: "m", PriceText: product.DefaultPriceText}, nil)
	assert.Equal(t, "$0.00", missing.Price)
	assert.False(t, missing.OnSale())
}

func TestCardsReadMembershipOnly(t *testing.T) {
	m := &members{cart: map[string]bool{"1": true}, favs: map[string]bool{"2": true}}
	products := []product.Product{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}

	cards := Cards(products, m)
	require.Len(t, cards, 2)
	assert.True(t, cards[0].InCart)
	assert.False(t, cards[0].Favorite)
	assert.True(t, cards[1].Favorite)
	assert.Equal(t, 1, cards[1].Index)
	assert.Equal(t, 4, m.reads)
	assert.Len(t, m.cart, 1)

	rec := RecommendationCard(products[0])
	assert.False(t, rec.InCart)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(product.Product{}))
	assert.Equal(t, "plain text", Describe(product.Product{Description: "plain text"}))

	html := product.Product{DetailedDescription: "<p>Soft <strong>cotton</strong></p><ul><li>Breathable</li></ul>"}
	out := Describe(html)
	assert.Contains(t, out, "**cotton**")
	assert.Contains(t, out, "Breathable")
	assert.NotContains(t, out, "<p>")
}

func TestMarkdownRender(t *testing.T) {
	m, err := NewMarkdown(60, "notty")
	require.NoError(t, err)
	assert.Equal(t, "", m.Render("   "))
	out := ansi.Strip(m.Render("Here are **three** polos"))
	assert.Contains(t, out, "three")

	var nilRenderer *Markdown
	assert.Equal(t, "raw", nilRenderer.Render("raw"))
}

func TestViews(t *testing.T) {
	s := DefaultStyles()
	c := NewCard(0, product.Product{ID: "1", Name: "Blue Polo Shirt", Brand: "Acme", Price: 45, ListPrice: 60}, &members{cart: map[string]bool{"1": true}})

	card := ansi.Strip(s.CardView(c, 30, true))
	assert.Contains(t, card, "Blue Polo Shirt")
	assert.Contains(t, card, "$45.00")
	assert.Contains(t, card, "$60.00")
	assert.Contains(t, card, CartMarker)

	grid := ansi.Strip(s.GridView([]Card{c, c, c}, 70, 30, -1))
	assert.Contains(t, grid, "Acme")
	assert.Contains(t, ansi.Strip(s.GridView(nil, 70, 30, 0)), "No products")

	line := ansi.Strip(s.ListLine(c, 0))
	assert.Contains(t, line, "1")
	assert.Contains(t, line, "Blue Polo Shirt")

	detail := ansi.Strip(s.DetailView(Detail{Card: c, Description: "Nice", Loading: true}, 60))
	assert.Contains(t, detail, "Loading recommendations")
	detail = ansi.Strip(s.DetailView(Detail{Card: c, Err: errors.New("x")}, 60))
	assert.Contains(t, detail, "Recommendations unavailable")
	detail = ansi.Strip(s.DetailView(Detail{Card: c, Recommendations: []Card{RecommendationCard(product.Product{ID: "r", Name: "Red Polo", Price: 30})}}, 60))
	assert.Contains(t, detail, "Red Polo")
	detail = ansi.Strip(s.DetailView(Detail{Card: c}, 60))
	assert.Contains(t, detail, "No recommendations available")
}
