package session

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const amount = `\$?\s*(\d[\d,]*(?:\.\d+)?)(?:\s*(k)\b)?`

var (
	betweenPattern = regexp.MustCompile(`(?i)\bbetween\s+` + amount + `\s+(?:and|to|-)\s+` + amount)
	rangePattern   = regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?)(?:\s*(k)\b)?\s*-\s*` + amount)
	maxPattern     = regexp.MustCompile(`(?i)\b(?:under|below|less than|cheaper than|max(?:imum)?|up to|no more than)\s+` + amount)
	minPattern     = regexp.MustCompile(`(?i)\b(?:above|over|more than|at least|min(?:imum)?|from|starting at)\s+` + amount)
)

// ExtractSearchContext derives price constraints from a natural language
// message. Bounds that are not mentioned stay unset.
func ExtractSearchContext(message string) SearchContext {
	sc := SearchContext{UserMessage: message}

	if m := betweenPattern.FindStringSubmatch(message); m != nil {
		lo, hi := parseAmount(m[1], m[2]), parseAmount(m[3], m[4])
		if lo > hi {
			lo, hi = hi, lo
		}
		sc.FiltersApplied.MinPrice = &lo
		sc.FiltersApplied.MaxPrice = &hi
		return sc
	}
	if m := rangePattern.FindStringSubmatch(message); m != nil {
		lo, hi := parseAmount(m[1], m[2]), parseAmount(m[3], m[4])
		if lo > hi {
			lo, hi = hi, lo
		}
		sc.FiltersApplied.MinPrice = &lo
		sc.FiltersApplied.MaxPrice = &hi
		return sc
	}

	if m := maxPattern.FindStringSubmatch(message); m != nil {
		v := parseAmount(m[1], m[2])
		sc.FiltersApplied.MaxPrice = &v
	}
	if m := minPattern.FindStringSubmatch(message); m != nil {
		v := parseAmount(m[1], m[2])
		sc.FiltersApplied.MinPrice = &v
	}
	return sc
}

// MergeBackendFilters overlays the bounds the backend reported in its
// filters_applied object. Backend values win.
func MergeBackendFilters(sc SearchContext, filtersApplied gjson.Result) SearchContext {
	if !filtersApplied.IsObject() {
		return sc
	}
	if v := filtersApplied.Get("max_price"); v.Type == gjson.Number {
		f := v.Float()
		sc.FiltersApplied.MaxPrice = &f
	}
	if v := filtersApplied.Get("min_price"); v.Type == gjson.Number {
		f := v.Float()
		sc.FiltersApplied.MinPrice = &f
	}
	return sc
}

func parseAmount(digits, thousands string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0
	}
	if thousands != "" {
		f *= 1000
	}
	return f
}
