// Package filter implements the preference-based offer filter: a pure
// function from (offer list, preference set) to the visible subset.
package filter

import (
	"strings"

	"offersmonkey/pkg/models"
)

// Match reports whether a single offer is relevant to the preference
// set. Preference kinds are combined with OR: preferences broaden what
// a user sees, they never narrow it to an intersection.
func Match(o models.Offer, p models.Preferences) bool {
	store := strings.ToLower(strings.TrimSpace(o.Store))
	for _, want := range p.Stores {
		if containsEither(store, strings.ToLower(strings.TrimSpace(want))) {
			return true
		}
	}

	if len(p.Brands) > 0 {
		for _, tok := range strings.Split(o.Categories, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			for _, want := range p.Brands {
				if containsEither(tok, strings.ToLower(strings.TrimSpace(want))) {
					return true
				}
			}
		}
	}

	if len(p.Banks) > 0 {
		text := strings.ToLower(o.Description + " " + o.LongOffer + " " + o.Terms)
		for _, bank := range p.Banks {
			bank = strings.ToLower(strings.TrimSpace(bank))
			if bank != "" && strings.Contains(text, bank) {
				return true
			}
		}
	}

	return false
}

// Apply returns the offers matching the preference set, preserving
// input order. An empty preference set means "show everything", so the
// input is returned unchanged.
func Apply(offers []models.Offer, p models.Preferences) []models.Offer {
	if p.IsEmpty() {
		return offers
	}
	out := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if Match(o, p) {
			out = append(out, o)
		}
	}
	return out
}

// Visible is Apply plus the fallback rule: when the substring
// heuristics over-filter down to nothing, show the full list rather
// than an apparently broken empty screen. The second result reports
// whether the fallback fired.
func Visible(offers []models.Offer, p models.Preferences) ([]models.Offer, bool) {
	filtered := Apply(offers, p)
	if len(filtered) == 0 && len(offers) > 0 {
		return offers, true
	}
	return filtered, false
}

// containsEither reports a bidirectional case-already-folded substring
// match: a contains b or b contains a. Empty patterns never match.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
