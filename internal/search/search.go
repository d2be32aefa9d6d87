// Package search filters catalog rows by a free-text query.
package search

import (
	"strings"

	"github.com/utafrali/ScentGo/internal/domain"
)

// Filter returns the perfumes whose name, brand, description or any note
// contains query, ignoring case. Only the empty query returns items unchanged; whitespace
// is matched literally.
// Order is preserved.
func Filter(items []domain.Perfume, query string) []domain.Perfume {
	q := normalize(query)
	if q == "" {
		return items
	}

	out := make([]domain.Perfume, 0, len(items))
	for _, p := range items {
		if matches(q, p.Name, p.Brand, p.Description) || matches(q, p.Notes...) {
			out = append(out, p)
		}
	}
	return out
}

// FilterRecords applies the same match to loosely typed rows. Missing keys,
// nil values and a notes field that is not a list are treated as empty.
func FilterRecords(records []map[string]any, query string) []map[string]any {
	q := normalize(query)
	if q == "" {
		return records
	}

	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if matches(q, text(rec["name"]), text(rec["brand"]), text(rec["description"])) ||
			matches(q, notes(rec["notes"])...) {
			out = append(out, rec)
		}
	}
	return out
}

func normalize(query string) string {
	return strings.ToLower(query)
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

func notes(v any) []string {
	switch n := v.(type) {
	case []string:
		return n
	case []any:
		out := make([]string, 0, len(n))
		for _, item := range n {
			out = append(out, text(item))
		}
		return out
	default:
		return nil
	}
}
