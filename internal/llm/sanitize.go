package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var flatTotalKeys = []string{"subtotal", "iva", "iva_rate", "total"}
var flatLineNumberKeys = []string{"quantity", "unit_price", "subtotal"}

// CoerceNumericStrings rewrites numeric fields that arrived as strings ("1190.00")
// into numbers so strict schema validation does not reject otherwise usable output.
// It returns the keys it touched.
func CoerceNumericStrings(doc map[string]any) []string {
	var touched []string
	if totals, ok := doc["totals"].(map[string]any); ok {
		for _, k := range flatTotalKeys {
			if coerce(totals, k) {
				touched = append(touched, "totals."+k)
			}
		}
	}
	if items, ok := doc["line_items"].([]any); ok {
		for i, it := range items {
			li, ok := it.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range flatLineNumberKeys {
				if coerce(li, k) {
					touched = append(touched, fmt.Sprintf("line_items[%d].%s", i, k))
				}
			}
		}
	}
	return touched
}

func coerce(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		m[key] = nil
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	m[key] = f
	return true
}

// NormalizeFlat fills defaults on a flat-shape document: provider strings default
// to "", totals default to 0, line_items default to []. Line items pass through
// untouched.
func NormalizeFlat(doc map[string]any) map[string]any {
	provider, _ := doc["provider"].(map[string]any)
	totals, _ := doc["totals"].(map[string]any)
	items, _ := doc["line_items"].([]any)
	if items == nil {
		items = []any{}
	}

	str := func(m map[string]any, k string) string {
		s, _ := m[k].(string)
		return s
	}
	num := func(m map[string]any, k string) float64 {
		switch v := m[k].(type) {
		case float64:
			return v
		case json.Number:
			f, _ := v.Float64()
			return f
		}
		return 0
	}

	return map[string]any{
		"provider": map[string]any{
			"name":    str(provider, "name"),
			"rut":     str(provider, "rut"),
			"address": str(provider, "address"),
		},
		"line_items": items,
		"totals": map[string]any{
			"subtotal": num(totals, "subtotal"),
			"iva":      num(totals, "iva"),
			"iva_rate": num(totals, "iva_rate"),
			"total":    num(totals, "total"),
		},
	}
}
