// Package render turns normalized products into display cards and terminal views.
package render

import (
	"net/url"
	"strings"

	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PlaceholderImage stands in for missing or unusable image URLs
const PlaceholderImage = "https://via.placeholder.com/300x300?text=No+Image"

// DefaultTitle is used when a product has no usable name
const DefaultTitle = "Product Name"

// Membership answers cart and favorites questions at render time
type Membership interface {
	InCart(id string) bool
	IsFavorite(id string) bool
}

type noMembership struct{}

func (noMembership) InCart(string) bool     { return false }
func (noMembership) IsFavorite(string) bool { return false }

// Card is the display form of one product
type Card struct {
	Index     int
	ID        string
	Title     string
	Brand     string
	Category  string
	Price     string
	ListPrice string
	Discount  string
	Messaging string
	Image     string
	URL       string
	InCart    bool
	Favorite  bool
}

// OnSale reports whether a struck-through list price should be shown
func (c Card) OnSale() bool {
	return c.ListPrice != ""
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount as dollars with thousands grouping
func FormatPrice(amount float64) string {
	return printer.Sprintf("$%.2f", amount)
}

// Title probes name, description, then category for a display title
func Title(p product.Product) string {
	for _, candidate := range []string{p.Name, p.Description, p.Category} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return DefaultTitle
}

// Image returns a usable image URL or the placeholder
func Image(p product.Product) string {
	raw := strings.TrimSpace(p.ImageURL)
	if raw == "" {
		return PlaceholderImage
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return PlaceholderImage
	}
	return raw
}

// NewCard maps one product into a card. m may be nil.
func NewCard(index int, p product.Product, m Membership) Card {
	if m == nil {
		m = noMembership{}
	}
	c := Card{
		Index:     index,
		ID:        p.ID,
		Title:     Title(p),
		Brand:     strings.TrimSpace(p.Brand),
		Category:  strings.TrimSpace(p.Category),
		Price:     priceText(p),
		Messaging: strings.TrimSpace(p.Messaging),
		Image:     Image(p),
		URL:       strings.TrimSpace(p.ProductURL),
		InCart:    m.InCart(p.ID),
		Favorite:  m.IsFavorite(p.ID),
	}
	if p.OnSale() {
		c.ListPrice = FormatPrice(p.ListPrice)
		c.Discount = printer.Sprintf("%.0f%% off", p.DiscountPercent())
	} else if offer := strings.TrimSpace(p.OfferPercent); offer != "" {
		c.Discount = offer
	}
	return c
}

func priceText(p product.Product) string {
	if p.Price > 0 {
		return FormatPrice(p.Price)
	}
	text := strings.TrimSpace(p.PriceText)
	if text == "" {
		text = product.DefaultPriceText
	}
	if !strings.HasPrefix(text, "$") {
		text = "$" + text
	}
	return text
}

// Cards maps products to cards in order. It only reads m.
func Cards(products []product.Product, m Membership) []Card {
	cards := make([]Card, 0, len(products))
	for i, p := range products {
		cards = append(cards, NewCard(i, p, m))
	}
	return cards
}

// RecommendationCard is the compact card shown under a quick view. It
// carries no cart or favorites state.
func RecommendationCard(p product.Product) Card {
	return NewCard(0, p, nil)
}
