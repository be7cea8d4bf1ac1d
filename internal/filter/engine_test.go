package filter

import (
	"testing"

	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []product.Product {
	return []product.Product{
		{ID: "1", Price: 10},
		{ID: "2", Price: 25, ListPrice: 40},
		{ID: "3", Price: 49.99, ListPrice: 49.99},
		{ID: "4", Price: 50},
		{ID: "5", Price: 75, ListPrice: 100, ImageURL: "x.png"},
		{ID: "6", Price: 99.99},
		{ID: "7", Price: 100},
		{ID: "8", Price: 150, ListPrice: 200},
		{ID: "9", Price: 30, ListPrice: 35, ImageURL: "y.png"},
		{ID: "10", Price: 0},
	}
}

func TestPredicates(t *testing.T) {
	products := fixture()
	assert.Equal(t, []string{"1", "2", "3", "9", "10"}, product.IDs(Apply(products, []Tag{Under50})))
	assert.Equal(t, []string{"7", "8"}, product.IDs(Apply(products, []Tag{Premium})))
	assert.Equal(t, []string{"2", "5", "8", "9"}, product.IDs(Apply(products, []Tag{Sale})))
	assert.Equal(t, []string{"4", "5", "6", "7", "8"}, product.IDs(Apply(products, []Tag{Over50})))
	assert.Equal(t, []string{"5", "9"}, product.IDs(Apply(products, []Tag{HasImage})))
	assert.Equal(t, []string{"2", "5", "8"}, product.IDs(Apply(products, []Tag{Discounted20})))
}

func TestCompositionRecomputesFromBase(t *testing.T) {
	e := NewEngine()
	require.True(t, e.SetBase(fixture()))

	e.AddFilter(Under50)
	both := e.AddFilter(Sale)
	assert.Equal(t, []string{"2", "9"}, product.IDs(both.Products))

	afterRemove := e.RemoveFilter(Sale)
	alone := Apply(fixture(), []Tag{Under50})
	assert.Equal(t, product.IDs(alone), product.IDs(afterRemove.Products))
	assert.Equal(t, []Tag{Under50}, e.Active())
}

func TestDuplicatesAndUnknownTags(t *testing.T) {
	e := NewEngine()
	e.SetBase(fixture())

	once := e.AddFilter(Premium)
	twice := e.AddFilter(Premium)
	assert.Equal(t, product.IDs(once.Products), product.IDs(twice.Products))
	assert.Equal(t, []Tag{Premium, Premium}, e.Active())

	e.RemoveFilter(Premium)
	assert.Empty(t, e.Active(), "remove drops every occurrence")

	res := e.AddFilter("bogus")
	assert.Len(t, res.Products, 10)
	assert.False(t, Known("bogus"))
	assert.True(t, Known(Sale))
}

func TestNoMatches(t *testing.T) {
	e := NewEngine()
	e.SetBase(fixture())
	e.AddFilter(Premium)
	res := e.AddFilter(Under50)
	assert.True(t, res.NoMatches)
	assert.Empty(t, res.Products)

	e.Clear()
	assert.False(t, e.Recompute().NoMatches)
}

func TestSetBaseOncePerSearch(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.SetBase(fixture()))
	assert.False(t, e.SetBase([]product.Product{{ID: "other"}}), "second call in the same search is ignored")
	assert.Len(t, e.Original(), 10)

	e.AddFilter(Sale)
	e.BeginSearch()
	assert.Empty(t, e.Active())
	assert.True(t, e.SetBase([]product.Product{{ID: "new", Price: 5}}))
	assert.Equal(t, []string{"new"}, product.IDs(e.Recompute().Products))
}

func TestResetRestoresTags(t *testing.T) {
	e := NewEngine()
	e.Reset(fixture(), ParseTags([]string{"under-50", "sale"}))
	assert.Equal(t, []string{"under-50", "sale"}, e.ActiveStrings())
	assert.True(t, e.Has(Sale))
	assert.Equal(t, []string{"2", "9"}, product.IDs(e.Recompute().Products))
}

func TestTagsListing(t *testing.T) {
	infos := Tags()
	require.NotEmpty(t, infos)
	for _, info := range infos {
		assert.True(t, Known(info.Tag))
		assert.NotEmpty(t, info.Description)
	}
}
