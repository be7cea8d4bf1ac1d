package filter

import (
	"github.com/entrepeneur4lyf/shopforge/internal/product"
)

// Tag names a refinement the user can stack on a result set
type Tag string

// Known tags
const (
	Under50      Tag = "under-50"
	Over50       Tag = "over-50"
	Premium      Tag = "premium"
	Sale         Tag = "sale"
	HasImage     Tag = "has-image"
	Discounted20 Tag = "discounted-20"
)

// Predicate decides whether a product survives a filter
type Predicate func(product.Product) bool

type definition struct {
	tag         Tag
	description string
	keep        Predicate
}

var definitions = []definition{
	{Under50, "price below $50", func(p product.Product) bool { return p.Price < 50 }},
	{Over50, "price $50 or more", func(p product.Product) bool { return p.Price >= 50 }},
	{Premium, "price $100 or more", func(p product.Product) bool { return p.Price >= 100 }},
	{Sale, "list price above current price", func(p product.Product) bool { return p.OnSale() }},
	{HasImage, "has a product image", func(p product.Product) bool { return p.ImageURL != "" }},
	{Discounted20, "at least 20% off", func(p product.Product) bool { return p.DiscountPercent() >= 20 }},
}

func lookup(tag Tag) (Predicate, bool) {
	for _, d := range definitions {
		if d.tag == tag {
			return d.keep, true
		}
	}
	return nil, false
}

// Known reports whether tag has a predicate
func Known(tag Tag) bool {
	_, ok := lookup(tag)
	return ok
}

// Info describes a tag for help output
type Info struct {
	Tag         Tag
	Description string
}

// Tags lists every known tag in display order
func Tags() []Info {
	out := make([]Info, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, Info{Tag: d.tag, Description: d.description})
	}
	return out
}

// Apply runs the tags in order over products. Unknown tags keep everything.
func Apply(products []product.Product, tags []Tag) []product.Product {
	result := append([]product.Product{}, products...)
	for _, tag := range tags {
		keep, ok := lookup(tag)
		if !ok {
			continue
		}
		kept := result[:0:0]
		for _, p := range result {
			if keep(p) {
				kept = append(kept, p)
			}
		}
		result = kept
	}
	return result
}
