package cart

import (
	"context"
	"sync"

	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/storage"
)

// State is the membership after a toggle
type State string

const (
	Added   State = "added"
	Removed State = "removed"
)

// collection is a persisted list with at most one entry per id
type collection[T any] struct {
	mu    sync.RWMutex
	key   string
	store storage.Store
	items []T
	idOf  func(T) string
}

func loadCollection[T any](ctx context.Context, st storage.Store, key string, idOf func(T) string) *collection[T] {
	c := &collection[T]{key: key, store: st, idOf: idOf}
	c.reload(ctx)
	return c
}

func (c *collection[T]) reload(ctx context.Context) {
	loaded := storage.Load(ctx, c.store, c.key, []T{})
	seen := make(map[string]bool, len(loaded))
	items := make([]T, 0, len(loaded))
	for _, item := range loaded {
		id := product.NormalizeID(c.idOf(item))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, item)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

func (c *collection[T]) indexOf(id string) int {
	id = product.NormalizeID(id)
	for i, item := range c.items {
		if product.NormalizeID(c.idOf(item)) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id) >= 0
}

// toggle inserts newItem() when absent and removes the entry when present
func (c *collection[T]) toggle(ctx context.Context, id string, newItem func() T) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := Added
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		state = Removed
	} else {
		c.items = append(c.items, newItem())
	}
	c.persist(ctx)
	return state
}

func (c *collection[T]) add(ctx context.Context, id string, newItem func() T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) >= 0 {
		return false
	}
	c.items = append(c.items, newItem())
	c.persist(ctx)
	return true
}

func (c *collection[T]) remove(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist(ctx)
	return true
}

func (c *collection[T]) clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []T{}
	c.persist(ctx)
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *collection[T]) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// persist must be called with mu held
func (c *collection[T]) persist(ctx context.Context) {
	items := c.items
	if items == nil {
		items = []T{}
	}
	storage.Save(ctx, c.store, c.key, items)
}
