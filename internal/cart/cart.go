package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
)

// Item is a product snapshot taken when it was added to the cart
type Item struct {
	product.Product
	AddedAt time.Time `json:"addedAt"`
}

// Cart is the persisted shopping cart. Items are never updated in place:
// removing and re-adding takes a fresh snapshot.
type Cart struct {
	items *collection[Item]
	now   func() time.Time
}

// NewCart loads the cart from st
func NewCart(ctx context.Context, st storage.Store) *Cart {
	return &Cart{
		items: loadCollection(ctx, st, storage.KeyCart, func(i Item) string { return i.ID }),
		now:   time.Now,
	}
}

func (c *Cart) snapshot(p product.Product) func() Item {
	return func() Item {
		snap := p.Snapshot()
		snap.ID = product.NormalizeID(snap.ID)
		return Item{Product: snap, AddedAt: c.now()}
	}
}

// Toggle adds p when absent and removes it when present
func (c *Cart) Toggle(ctx context.Context, p product.Product) State {
	state := c.items.toggle(ctx, p.ID, c.snapshot(p))
	log.Debug("cart toggled", "id", p.ID, "state", state, "count", c.Count())
	return state
}

// Add inserts p, reporting false when it was already in the cart
func (c *Cart) Add(ctx context.Context, p product.Product) bool {
	return c.items.add(ctx, p.ID, c.snapshot(p))
}

// Remove drops the item with id, reporting whether it was present
func (c *Cart) Remove(ctx context.Context, id string) bool {
	return c.items.remove(ctx, id)
}

// Contains reports whether id is in the cart
func (c *Cart) Contains(id string) bool {
	return c.items.contains(id)
}

// Items returns the cart contents in insertion order
func (c *Cart) Items() []Item {
	return c.items.list()
}

// Count feeds the cart badge
func (c *Cart) Count() int {
	return c.items.count()
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) {
	c.items.clear(ctx)
}

// Reload re-reads the cart from storage
func (c *Cart) Reload(ctx context.Context) {
	c.items.reload(ctx)
}

// Total sums item prices
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items.list() {
		total += item.Price
	}
	return total
}

// Links returns the vendor URLs of items that have one
func (c *Cart) Links() []string {
	var links []string
	for _, item := range c.items.list() {
		if item.ProductURL != "" {
			links = append(links, item.ProductURL)
		}
	}
	return links
}

// Export returns the cart as indented JSON
func (c *Cart) Export() (string, error) {
	data, err := json.MarshalIndent(c.items.list(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode cart: %w", err)
	}
	return string(data), nil
}
