package categories

import (
	"sort"
	"strings"

	"offersmonkey/pkg/models"
)

const (
	// tokens seen fewer than this many times across the offer set are
	// one-off noise and are suppressed
	minCount   = 3
	maxDerived = 8
)

// iconKeywords maps a keyword found in a category name to the symbolic
// icon the UI renders. First match in order wins; shopping-bag is the
// fallback.
var iconKeywords = []struct {
	keyword string
	icon    string
}{
	{"electronics", "laptop"},
	{"fashion", "shirt"},
	{"food", "utensils"},
	{"home", "home"},
	{"travel", "plane"},
	{"beauty", "sparkles"},
	{"health", "heart"},
	{"toys", "gift"},
	{"kids", "gift"},
}

const defaultIcon = "shopping-bag"

// IconFor picks an icon for a category name by keyword lookup.
func IconFor(name string) string {
	lower := strings.ToLower(name)
	for _, kw := range iconKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.icon
		}
	}
	return defaultIcon
}

// Slugify lowercases a category name and replaces spaces with hyphens.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// DeriveDynamic builds a "top categories" read model from the current
// offer set by frequency-counting the comma-separated category tokens.
// Tokens below minCount are dropped, the rest are ordered by descending
// count (token ascending on ties, so the output is deterministic) and
// capped at maxDerived. Each surviving token resolves to an existing
// known category by case-insensitive name or slug match, or is
// synthesized with a slug and a keyword-chosen icon. Pure: stored
// categories are never mutated.
func DeriveDynamic(offers []models.Offer, known []models.Category) []models.Category {
	counts := make(map[string]int)
	for _, o := range offers {
		for _, tok := range strings.Split(o.Categories, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			counts[tok]++
		}
	}

	type tally struct {
		token string
		count int
	}
	ranked := make([]tally, 0, len(counts))
	for tok, n := range counts {
		if n >= minCount {
			ranked = append(ranked, tally{token: tok, count: n})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].token < ranked[j].token
	})
	if len(ranked) > maxDerived {
		ranked = ranked[:maxDerived]
	}

	out := make([]models.Category, 0, len(ranked))
	for _, t := range ranked {
		c := resolve(t.token, known)
		c.Count = t.count
		out = append(out, c)
	}
	return out
}

func resolve(token string, known []models.Category) models.Category {
	lower := strings.ToLower(token)
	for _, c := range known {
		if strings.ToLower(c.Name) == lower || strings.ToLower(c.ID) == lower {
			return models.Category{ID: c.ID, Name: c.Name, Icon: c.Icon}
		}
	}
	return models.Category{
		ID:   Slugify(token),
		Name: token,
		Icon: IconFor(token),
	}
}
