package storage

import (
	"strings"

	"github.com/kittrack/kittrack/pkg/menu"
)

// NormalizeKitID trims the whitespace users paste around kit ids.
func NormalizeKitID(s string) string {
	return strings.TrimSpace(s)
}

// normalizeCatalog trims names, drops empty items and duplicate items within
// a category, and merges categories that share a name. Order is kept.
func normalizeCatalog(categories []menu.Category) []menu.Category {
	var out []menu.Category
	index := map[string]int{}
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, menu.Category{Name: name})
		}
		for _, it := range c.Items {
			it = strings.TrimSpace(it)
			if it == "" || contains(out[i].Items, it) {
				continue
			}
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
