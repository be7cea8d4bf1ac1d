package product

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Field aliases in probing order. Backends have shipped each of these at some
// point; the first present, non-empty one wins.
var (
	idFields          = []string{"id", "product_id", "productId", "sku", "_id"}
	nameFields        = []string{"name", "title", "product_name"}
	brandFields       = []string{"brand", "vendor", "manufacturer"}
	priceFields       = []string{"current_price", "price", "sale_price"}
	listPriceFields   = []string{"original_price", "list_price", "regular_price", "compare_at_price"}
	imageFields       = []string{"image_url", "image", "imageUrl", "thumbnail", "images.0"}
	urlFields         = []string{"product_url", "url", "vendor_url", "link"}
	descriptionFields = []string{"description", "short_description"}
	detailFields      = []string{"detailed_description", "long_description"}
	categoryFields    = []string{"category", "product_type"}
	offerFields       = []string{"offer_percent", "discount"}
	colorFields       = []string{"colors", "color"}
	sizeFields        = []string{"sizes", "size"}
)

// DefaultPriceText is shown for products that arrive without a price.
const DefaultPriceText = "0.00"

// Normalize maps one backend product object into the canonical shape.
// Objects without an id are addressed as idx-<position>.
func Normalize(raw gjson.Result, position int) Product {
	p := Product{
		ID:                  firstString(raw, idFields),
		Name:                firstString(raw, nameFields),
		Brand:               firstString(raw, brandFields),
		Description:         firstString(raw, descriptionFields),
		DetailedDescription: firstString(raw, detailFields),
		Category:            firstString(raw, categoryFields),
		OfferPercent:        firstString(raw, offerFields),
		Messaging:           raw.Get("messaging").String(),
		ImageURL:            firstString(raw, imageFields),
		ProductURL:          firstString(raw, urlFields),
		Colors:              joinedList(raw, colorFields),
		Sizes:               joinedList(raw, sizeFields),
	}

	if p.ID == "" {
		p.ID = "idx-" + strconv.Itoa(position)
	}

	if price, ok := first(raw, priceFields); ok {
		p.Price = ParsePrice(price)
		if price.Type == gjson.String {
			p.PriceText = strings.TrimSpace(price.String())
		} else {
			p.PriceText = FormatPrice(p.Price)
		}
	} else {
		p.PriceText = DefaultPriceText
	}
	if list, ok := first(raw, listPriceFields); ok {
		p.ListPrice = ParsePrice(list)
	}

	if raw.Raw != "" {
		p.Raw = json.RawMessage(raw.Raw)
	}
	return p
}

// NormalizeList normalizes a JSON array of products. Anything other than an
// array yields nil; an empty array yields an empty, non-nil slice.
func NormalizeList(raw gjson.Result) []Product {
	if !raw.IsArray() {
		return nil
	}
	items := raw.Array()
	products := make([]Product, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			continue
		}
		products = append(products, Normalize(item, i))
	}
	return products
}

// NormalizeJSON is a convenience wrapper for a single encoded object.
func NormalizeJSON(data []byte) Product {
	return Normalize(gjson.ParseBytes(data), 0)
}

func first(raw gjson.Result, fields []string) (gjson.Result, bool) {
	for _, f := range fields {
		v := raw.Get(f)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type == gjson.String && strings.TrimSpace(v.String()) == "" {
			continue
		}
		return v, true
	}
	return gjson.Result{}, false
}

func firstString(raw gjson.Result, fields []string) string {
	v, ok := first(raw, fields)
	if !ok {
		return ""
	}
	switch v.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}

func joinedList(raw gjson.Result, fields []string) string {
	v, ok := first(raw, fields)
	if !ok {
		return ""
	}
	if !v.IsArray() {
		return firstString(raw, fields)
	}
	var parts []string
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
