package product

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"currency string", "$1,234.50", 1234.5},
		{"float", 1234.5, 1234.5},
		{"trailing space", "1234.50 ", 1234.5},
		{"int", 45, 45},
		{"unparseable", "call for price", 0},
		{"empty", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"gjson number", gjson.Parse(`80`), 80},
		{"gjson string", gjson.Parse(`"$19.99"`), 19.99},
		{"nan string", "NaN", 0},
		{"infinity string", "Infinity", 0},
		{"negative inf string", "-inf", 0},
		{"gjson nan string", gjson.Parse(`"NaN"`), 0},
		{"nan float", math.NaN(), 0},
		{"inf float", math.Inf(1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ParsePrice(tc.in), 0.0001)
		})
	}
}

func TestNonFinitePriceStaysEncodable(t *testing.T) {
	p := NormalizeJSON([]byte(`{"id":"p1","name":"Polo","price":"NaN","original_price":"Infinity"}`))
	assert.Zero(t, p.Price)
	assert.Zero(t, p.ListPrice)

	_, err := json.Marshal(p)
	require.NoError(t, err)
}

func TestNormalizeAliases(t *testing.T) {
	t.Run("canonical names", func(t *testing.T) {
		p := NormalizeJSON([]byte(`{"id":"p1","name":"Polo","price":"$45.00","original_price":"$60","image_url":"http://img/1.png","product_url":"http://shop/p1"}`))
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Polo", p.Name)
		assert.InDelta(t, 45.0, p.Price, 0.0001)
		assert.Equal(t, "$45.00", p.PriceText)
		assert.InDelta(t, 60.0, p.ListPrice, 0.0001)
		assert.True(t, p.OnSale())
		assert.Equal(t, "http://img/1.png", p.ImageURL)
		assert.Equal(t, "http://shop/p1", p.ProductURL)
	})

	t.Run("alternate names", func(t *testing.T) {
		p := NormalizeJSON([]byte(`{"product_id":42,"title":"Chino","current_price":80,"price":99,"image":"a.png","url":"http://x","colors":["navy","khaki"]}`))
		assert.Equal(t, "42", p.ID)
		assert.Equal(t, "Chino", p.Name)
		assert.InDelta(t, 80.0, p.Price, 0.0001, "current_price wins over price")
		assert.Equal(t, "80.00", p.PriceText)
		assert.Equal(t, "a.png", p.ImageURL)
		assert.Equal(t, "http://x", p.ProductURL)
		assert.Equal(t, "navy, khaki", p.Colors)
	})

	t.Run("missing price", func(t *testing.T) {
		p := NormalizeJSON([]byte(`{"id":"x"}`))
		assert.Equal(t, DefaultPriceText, p.PriceText)
		assert.Zero(t, p.Price)
		assert.False(t, p.OnSale())
	})

	t.Run("blank alias skipped", func(t *testing.T) {
		p := NormalizeJSON([]byte(`{"id":"x","name":"  ","title":"Fallback"}`))
		assert.Equal(t, "Fallback", p.Name)
	})

	t.Run("same product from different field sets", func(t *testing.T) {
		a := NormalizeJSON([]byte(`{"id":"p9","name":"Tee","price":20}`))
		b := NormalizeJSON([]byte(`{"sku":"p9","title":"Tee","current_price":"$20.00"}`))
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Price, b.Price)
	})
}

func TestNormalizeList(t *testing.T) {
	assert.Nil(t, NormalizeList(gjson.Parse(`{"id":"x"}`)))
	assert.Nil(t, NormalizeList(gjson.Result{}))

	empty := NormalizeList(gjson.Parse(`[]`))
	require.NotNil(t, empty)
	assert.Empty(t, empty)

	list := NormalizeList(gjson.Parse(`[{"id":"a"},"junk",{"name":"no id"}]`))
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "idx-2", list[1].ID)
}

func TestPayloadPrefersRaw(t *testing.T) {
	p := NormalizeJSON([]byte(`{"sku":"s1","title":"Hat"}`))
	assert.JSONEq(t, `{"sku":"s1","title":"Hat"}`, string(p.Payload()))

	snap := p.Snapshot()
	assert.Nil(t, snap.Raw)
	assert.Contains(t, string(snap.Payload()), `"id":"s1"`)
}

func TestFindByID(t *testing.T) {
	products := []Product{{ID: "a"}, {ID: " b "}}
	got, ok := FindByID(products, "b")
	require.True(t, ok)
	assert.Equal(t, " b ", got.ID)

	_, ok = FindByID(products, "zzz")
	assert.False(t, ok)
}
