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

// Favorite is a favorited product. Older data stored bare ids, so Product
// may be nil.
type Favorite struct {
	ID      string           `json:"id"`
	Product *product.Product `json:"product,omitempty"`
	AddedAt time.Time        `json:"addedAt,omitempty"`
}

// UnmarshalJSON accepts either a bare id string or the object form
func (f *Favorite) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*f = Favorite{ID: id}
		return nil
	}
	type plain Favorite
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid favorite entry: %w", err)
	}
	if p.ID == "" && p.Product != nil {
		p.ID = p.Product.ID
	}
	*f = Favorite(p)
	return nil
}

// Name returns a display name, falling back to the id
func (f Favorite) Name() string {
	if f.Product != nil && f.Product.Name != "" {
		return f.Product.Name
	}
	return f.ID
}

// Favorites is the persisted favorites list
type Favorites struct {
	entries *collection[Favorite]
	now     func() time.Time
}

// NewFavorites loads favorites from st
func NewFavorites(ctx context.Context, st storage.Store) *Favorites {
	return &Favorites{
		entries: loadCollection(ctx, st, storage.KeyFavorites, func(f Favorite) string { return f.ID }),
		now:     time.Now,
	}
}

func (f *Favorites) entry(id string, snapshot *product.Product) func() Favorite {
	return func() Favorite {
		fav := Favorite{ID: product.NormalizeID(id), AddedAt: f.now()}
		if snapshot != nil {
			snap := snapshot.Snapshot()
			fav.Product = &snap
		}
		return fav
	}
}

// Toggle flips membership of id. snapshot may be nil to store a bare id.
func (f *Favorites) Toggle(ctx context.Context, id string, snapshot *product.Product) State {
	state := f.entries.toggle(ctx, id, f.entry(id, snapshot))
	log.Debug("favorite toggled", "id", id, "state", state, "count", f.Count())
	return state
}

// Add inserts id, reporting false when already a favorite
func (f *Favorites) Add(ctx context.Context, id string, snapshot *product.Product) bool {
	return f.entries.add(ctx, id, f.entry(id, snapshot))
}

// Remove drops id, reporting whether it was present
func (f *Favorites) Remove(ctx context.Context, id string) bool {
	return f.entries.remove(ctx, id)
}

// Contains reports whether id is a favorite
func (f *Favorites) Contains(id string) bool {
	return f.entries.contains(id)
}

// Items returns favorites in insertion order
func (f *Favorites) Items() []Favorite {
	return f.entries.list()
}

// Count feeds the favorites badge
func (f *Favorites) Count() int {
	return f.entries.count()
}

// Clear removes all favorites
func (f *Favorites) Clear(ctx context.Context) {
	f.entries.clear(ctx)
}

// Reload re-reads favorites from storage
func (f *Favorites) Reload(ctx context.Context) {
	f.entries.reload(ctx)
}
