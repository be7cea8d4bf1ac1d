package product

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// ParsePrice normalizes a price that may be numeric or a currency formatted
// string. Unparseable values normalize to 0.
func ParsePrice(v any) float64 {
	return finite(parsePrice(v))
}

func parsePrice(v any) float64 {
	switch p := v.(type) {
	case nil:
		return 0
	case float64:
		return p
	case float32:
		return float64(p)
	case int:
		return float64(p)
	case int64:
		return float64(p)
	case int32:
		return float64(p)
	case string:
		return parsePriceString(p)
	case gjson.Result:
		return priceFromResult(p)
	default:
		return 0
	}
}

func parsePriceString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// finite maps NaN and infinities to 0; they cannot be stored as JSON
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func priceFromResult(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		return parsePriceString(r.String())
	default:
		return 0
	}
}

// FormatPrice renders a price with two decimals and no currency symbol, the
// form used when a product arrives without one.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
