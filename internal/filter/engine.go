package filter

import (
	"github.com/entrepeneur4lyf/shopforge/internal/product"
)

// Result is the outcome of a recompute
type Result struct {
	Products  []product.Product
	NoMatches bool
}

// Engine keeps the unfiltered snapshot of the latest search and the ordered
// list of active tags. Every recompute starts from the snapshot.
type Engine struct {
	original []product.Product
	active   []Tag
	// stale is set by BeginSearch so the next SetBase takes the new results
	stale bool
}

// NewEngine creates an empty engine
func NewEngine() *Engine {
	return &Engine{stale: true}
}

// BeginSearch clears active tags and marks the snapshot for replacement
func (e *Engine) BeginSearch() {
	e.active = nil
	e.stale = true
}

// SetBase records products as the unfiltered snapshot. Only the first call
// after BeginSearch takes effect; it reports whether it did.
func (e *Engine) SetBase(products []product.Product) bool {
	if !e.stale {
		return false
	}
	e.original = append([]product.Product{}, products...)
	e.stale = false
	return true
}

// Reset replaces the snapshot and the active tags outright. Used when a
// stored session is restored.
func (e *Engine) Reset(products []product.Product, tags []Tag) {
	e.original = append([]product.Product{}, products...)
	e.active = append([]Tag(nil), tags...)
	e.stale = false
}

// AddFilter appends a tag and recomputes
func (e *Engine) AddFilter(tag Tag) Result {
	e.active = append(e.active, tag)
	return e.Recompute()
}

// RemoveFilter removes every occurrence of tag and recomputes
func (e *Engine) RemoveFilter(tag Tag) Result {
	kept := e.active[:0:0]
	for _, t := range e.active {
		if t != tag {
			kept = append(kept, t)
		}
	}
	e.active = kept
	return e.Recompute()
}

// Clear drops all active tags
func (e *Engine) Clear() Result {
	e.active = nil
	return e.Recompute()
}

// Recompute applies the active tags, in order, to the snapshot
func (e *Engine) Recompute() Result {
	products := Apply(e.original, e.active)
	return Result{
		Products:  products,
		NoMatches: len(products) == 0,
	}
}

// Active returns the active tags in order
func (e *Engine) Active() []Tag {
	return append([]Tag(nil), e.active...)
}

// ActiveStrings returns the active tags as strings, for persistence
func (e *Engine) ActiveStrings() []string {
	out := make([]string, 0, len(e.active))
	for _, t := range e.active {
		out = append(out, string(t))
	}
	return out
}

// Has reports whether tag is active
func (e *Engine) Has(tag Tag) bool {
	for _, t := range e.active {
		if t == tag {
			return true
		}
	}
	return false
}

// Original returns the unfiltered snapshot
func (e *Engine) Original() []product.Product {
	return append([]product.Product{}, e.original...)
}

// ParseTags converts persisted strings back to tags
func ParseTags(values []string) []Tag {
	tags := make([]Tag, 0, len(values))
	for _, v := range values {
		tags = append(tags, Tag(v))
	}
	return tags
}
