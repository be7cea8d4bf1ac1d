package session

import (
	"context"
	"strings"

	"github.com/entrepeneur4lyf/shopforge/internal/storage"
)

const maxSearchHistory = 10

// seedSearches is what a fresh install shows as recent searches
var seedSearches = []string{
	"summer dresses",
	"running shoes under $100",
	"leather jackets",
}

// History is the flat, most recent first list of past queries
type History struct {
	store   storage.Store
	entries []string
}

// NewHistory loads search history, seeding it when nothing is stored
func NewHistory(ctx context.Context, st storage.Store) *History {
	h := &History{store: st}
	h.Reload(ctx)
	return h
}

// Reload re-reads the stored history
func (h *History) Reload(ctx context.Context) {
	seed := append([]string(nil), seedSearches...)
	h.entries = storage.Load(ctx, h.store, storage.KeySearchHistory, seed)
}

// Add records a query at the front, removing case-insensitive duplicates
func (h *History) Add(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	entries := []string{query}
	for _, e := range h.entries {
		if !strings.EqualFold(e, query) {
			entries = append(entries, e)
		}
	}
	if len(entries) > maxSearchHistory {
		entries = entries[:maxSearchHistory]
	}
	h.entries = entries
	storage.Save(ctx, h.store, storage.KeySearchHistory, h.entries)
}

// List returns the history, most recent first
func (h *History) List() []string {
	return append([]string(nil), h.entries...)
}

// Clear empties the history
func (h *History) Clear(ctx context.Context) {
	h.entries = []string{}
	storage.Save(ctx, h.store, storage.KeySearchHistory, h.entries)
}
