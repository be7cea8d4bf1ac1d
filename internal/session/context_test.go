package session

import (
	"context"
	"testing"

	"github.com/entrepeneur4lyf/shopforge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func bound(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func TestExtractSearchContext(t *testing.T) {
	cases := []struct {
		msg      string
		min, max any
	}{
		{"blue polo shirts under $50", nil, 50.0},
		{"dresses below 30", nil, 30.0},
		{"boots less than $1,200.50", nil, 1200.5},
		{"jackets over $100", 100.0, nil},
		{"watches more than 2k", 2000.0, nil},
		{"sneakers between $40 and $80", 40.0, 80.0},
		{"bags between 90 and 20", 20.0, 90.0},
		{"coats $50-$150", 50.0, 150.0},
		{"shirts under $50 kids size", nil, 50.0},
		{"just some hats", nil, nil},
		{"above $20 and under $60", 20.0, 60.0},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			sc := ExtractSearchContext(tc.msg)
			assert.Equal(t, tc.msg, sc.UserMessage)
			assert.Equal(t, tc.min, bound(sc.FiltersApplied.MinPrice), "min")
			assert.Equal(t, tc.max, bound(sc.FiltersApplied.MaxPrice), "max")
		})
	}
}

func TestMergeBackendFilters(t *testing.T) {
	sc := ExtractSearchContext("tees under $50")
	merged := MergeBackendFilters(sc, gjson.Parse(`{"max_price": 45, "min_price": 10, "color": "red"}`))
	assert.Equal(t, 45.0, bound(merged.FiltersApplied.MaxPrice))
	assert.Equal(t, 10.0, bound(merged.FiltersApplied.MinPrice))

	untouched := MergeBackendFilters(sc, gjson.Parse(`null`))
	assert.Equal(t, 50.0, bound(untouched.FiltersApplied.MaxPrice))
	assert.True(t, ExtractSearchContext("hats").FiltersApplied.Empty())
}

func TestSearchHistory(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()

	h := NewHistory(ctx, st)
	assert.Equal(t, seedSearches, h.List(), "seeded when nothing stored")

	h.Add(ctx, "Leather Jackets")
	h.Add(ctx, "   ")
	list := h.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Leather Jackets", list[0])

	for _, q := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		h.Add(ctx, q)
	}
	assert.Len(t, h.List(), maxSearchHistory)
	assert.Equal(t, "k", h.List()[0])

	reloaded := NewHistory(ctx, st)
	assert.Equal(t, h.List(), reloaded.List())

	h.Clear(ctx)
	assert.Empty(t, NewHistory(ctx, st).List())
}
