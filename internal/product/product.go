package product

import (
	"encoding/json"
	"strings"
)

// Product is the canonical shape every backend payload is normalized into.
// Nothing past the backend boundary looks at raw field names.
type Product struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name,omitempty"`
	Brand               string          `json:"brand,omitempty"`
	Description         string          `json:"description,omitempty"`
	DetailedDescription string          `json:"detailed_description,omitempty"`
	Category            string          `json:"category,omitempty"`
	Price               float64         `json:"price"`
	PriceText           string          `json:"price_text,omitempty"`
	ListPrice           float64         `json:"list_price,omitempty"`
	OfferPercent        string          `json:"offer_percent,omitempty"`
	Messaging           string          `json:"messaging,omitempty"`
	ImageURL            string          `json:"image_url,omitempty"`
	ProductURL          string          `json:"product_url,omitempty"`
	Colors              string          `json:"colors,omitempty"`
	Sizes               string          `json:"sizes,omitempty"`
	Raw                 json.RawMessage `json:"raw,omitempty"`
}

// OnSale reports whether the list price is above the current price.
func (p Product) OnSale() bool {
	return p.ListPrice > p.Price
}

// DiscountPercent returns the discount off the list price, 0 when not on sale.
func (p Product) DiscountPercent() float64 {
	if !p.OnSale() || p.ListPrice == 0 {
		return 0
	}
	return (p.ListPrice - p.Price) / p.ListPrice * 100
}

// Payload returns the JSON the backend should receive when this product is
// sent back to it. The original payload is preferred so the backend sees its
// own field names.
func (p Product) Payload() json.RawMessage {
	if len(p.Raw) > 0 {
		return p.Raw
	}
	data, err := json.Marshal(p)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

// Snapshot returns a copy without the raw payload, used for cart and
// favorites persistence.
func (p Product) Snapshot() Product {
	p.Raw = nil
	return p
}

// NormalizeID coerces an identifier into the form used for lookups.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// FindByID returns the product whose normalized id matches.
func FindByID(products []Product, id string) (Product, bool) {
	id = NormalizeID(id)
	for _, p := range products {
		if NormalizeID(p.ID) == id {
			return p, true
		}
	}
	return Product{}, false
}

// IDs returns the ids of products in order.
func IDs(products []Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
