package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"offersmonkey/pkg/models"
)

func offersWith(cats ...string) []models.Offer {
	out := make([]models.Offer, 0, len(cats))
	for i, c := range cats {
		out = append(out, models.Offer{ID: string(rune('a' + i)), Categories: c})
	}
	return out
}

func TestDeriveDynamicThreshold(t *testing.T) {
	offers := offersWith(
		"Electronics, Gadgets",
		"Electronics, Gadgets",
		"Electronics, Gadgets",
		"Toys",
	)
	got := DeriveDynamic(offers, nil)

	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Electronics", "Gadgets"}, names)
	assert.NotContains(t, names, "Toys", "one-off category must be suppressed")
}

func TestDeriveDynamicOrdering(t *testing.T) {
	offers := offersWith(
		"Fashion", "Fashion", "Fashion", "Fashion",
		"Electronics", "Electronics", "Electronics",
	)
	got := DeriveDynamic(offers, nil)
	assert.Len(t, got, 2)
	assert.Equal(t, "Fashion", got[0].Name)
	assert.Equal(t, 4, got[0].Count)
	assert.Equal(t, "Electronics", got[1].Name)
	assert.Equal(t, 3, got[1].Count)
}

func TestDeriveDynamicTopEight(t *testing.T) {
	var offers []models.Offer
	tokens := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for _, tok := range tokens {
		for i := 0; i < 3; i++ {
			offers = append(offers, models.Offer{Categories: tok})
		}
	}
	got := DeriveDynamic(offers, nil)
	assert.Len(t, got, 8)
}

func TestDeriveDynamicResolvesKnownCategories(t *testing.T) {
	known := []models.Category{{ID: "electronics", Name: "Electronics", Icon: "laptop"}}
	offers := offersWith("electronics", "electronics", "electronics")
	got := DeriveDynamic(offers, known)
	assert.Len(t, got, 1)
	// resolved case-insensitively to the curated entry, not synthesized
	assert.Equal(t, "Electronics", got[0].Name)
	assert.Equal(t, "laptop", got[0].Icon)
}

func TestDeriveDynamicSynthesizesSlugAndIcon(t *testing.T) {
	offers := offersWith("Travel Deals", "Travel Deals", "Travel Deals")
	got := DeriveDynamic(offers, nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "travel-deals", got[0].ID)
	assert.Equal(t, "plane", got[0].Icon)
}

func TestDeriveDynamicIdempotent(t *testing.T) {
	offers := offersWith(
		"Electronics, Fashion", "Electronics, Fashion", "Electronics, Fashion",
		"Food", "Food", "Food", "Food",
	)
	first := DeriveDynamic(offers, nil)
	second := DeriveDynamic(offers, nil)
	assert.Equal(t, first, second)
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "laptop", IconFor("Electronics & Appliances"))
	assert.Equal(t, "shirt", IconFor("fashion"))
	assert.Equal(t, "utensils", IconFor("Food & Dining"))
	assert.Equal(t, "gift", IconFor("Kids Wear"))
	assert.Equal(t, "shopping-bag", IconFor("Miscellaneous"))
}
