package domain

import (
	"strings"

	"github.com/harithj/lanka-sitrep/internal/csvio"
)

// Categories is the closed vocabulary every news item and alert resolves
// to. Values outside it are coerced to "community" — never rejected.
var Categories = []string{
	"traffic", "weather", "safety", "crime", "government",
	"economy", "health", "environment", "social", "community",
}

var categorySet = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// categoryAliases remaps the category spellings upstream sources actually
// use onto the closed vocabulary.
var categoryAliases = map[string]string{
	"transport":      "traffic",
	"transportation": "traffic",
	"climate":        "weather",
	"security":       "safety",
	"govt":           "government",
	"politics":       "government",
	"business":       "economy",
	"finance":        "economy",
	"medical":        "health",
	"environmental":  "environment",
	"protest":        "social",
	"local":          "community",
	"regional":       "community",
	"events":         "community",
	"general":        "community",
}

// NormalizeCategory resolves a parsed row to a vocabulary member. The
// fallback cascade runs in order:
//
//  1. the mapped category field;
//  2. failing that, the first non-empty value under any header containing
//     the substring "category" (case-insensitive);
//  3. failing that, the default "uncategorized";
//  4. lowercase and trim;
//  5. alias remapping;
//  6. anything still outside the vocabulary is forced to "community"
//     (which also catches the "uncategorized" default).
func NormalizeCategory(r csvio.Row) string {
	v := r.Get("category")
	if strings.TrimSpace(v) == "" {
		for _, h := range r.Headers {
			if !strings.Contains(strings.ToLower(h), "category") {
				continue
			}
			if val := strings.TrimSpace(r.Values[h]); val != "" {
				v = val
				break
			}
		}
	}
	if strings.TrimSpace(v) == "" {
		v = "uncategorized"
	}

	v = strings.ToLower(strings.TrimSpace(v))
	if alias, ok := categoryAliases[v]; ok {
		v = alias
	}
	if !categorySet[v] {
		return "community"
	}
	return v
}

// NormalizeCategoryValue runs the same lowercase/alias/vocabulary cascade
// on a bare string, for callers that are not holding a parsed row.
func NormalizeCategoryValue(v string) string {
	if strings.TrimSpace(v) == "" {
		v = "uncategorized"
	}
	v = strings.ToLower(strings.TrimSpace(v))
	if alias, ok := categoryAliases[v]; ok {
		v = alias
	}
	if !categorySet[v] {
		return "community"
	}
	return v
}
