package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"offersmonkey/pkg/models"
)

func sampleOffers() []models.Offer {
	return []models.Offer{
		{ID: "offer-1", Store: "Amazon", Categories: "Electronics"},
		{ID: "offer-2", Store: "Myntra", Categories: "Fashion"},
		{ID: "offer-3", Store: "Swiggy", Categories: "Food, Dining", Description: "Flat 20% off with HDFC cards"},
	}
}

func TestApplyEmptyPreferencesIsIdentity(t *testing.T) {
	offers := sampleOffers()
	got := Apply(offers, models.Preferences{})
	assert.Equal(t, offers, got)
}

func TestApplyStoreMatch(t *testing.T) {
	got := Apply(sampleOffers(), models.Preferences{Stores: []string{"amazon"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "offer-1", got[0].ID)
}

func TestApplyStoreMatchIsBidirectional(t *testing.T) {
	// preferred string longer than the store name still matches
	got := Apply(sampleOffers(), models.Preferences{Stores: []string{"amazon india"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "offer-1", got[0].ID)
}

func TestApplyBrandMatchesCategoryTokens(t *testing.T) {
	got := Apply(sampleOffers(), models.Preferences{Brands: []string{"dining"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "offer-3", got[0].ID)
}

func TestApplyBankMatchesDescriptionText(t *testing.T) {
	got := Apply(sampleOffers(), models.Preferences{Banks: []string{"HDFC"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "offer-3", got[0].ID)
}

func TestApplyKindsAreORed(t *testing.T) {
	got := Apply(sampleOffers(), models.Preferences{
		Stores: []string{"myntra"},
		Banks:  []string{"hdfc"},
	})
	assert.Len(t, got, 2)
	// stable: input order preserved
	assert.Equal(t, "offer-2", got[0].ID)
	assert.Equal(t, "offer-3", got[1].ID)
}

func TestApplyEveryResultMatches(t *testing.T) {
	prefs := models.Preferences{Stores: []string{"swiggy"}, Brands: []string{"fashion"}}
	for _, o := range Apply(sampleOffers(), prefs) {
		assert.True(t, Match(o, prefs), "offer %s in result must satisfy a predicate", o.ID)
	}
}

func TestVisibleFallsBackWhenNothingMatches(t *testing.T) {
	offers := sampleOffers()
	got, fellBack := Visible(offers, models.Preferences{Stores: []string{"nonexistent"}})
	assert.True(t, fellBack)
	assert.Equal(t, offers, got)
}

func TestVisibleNoFallbackOnMatch(t *testing.T) {
	got, fellBack := Visible(sampleOffers(), models.Preferences{Stores: []string{"amazon"}})
	assert.False(t, fellBack)
	assert.Len(t, got, 1)
}

func TestVisibleEmptyInputStaysEmpty(t *testing.T) {
	got, fellBack := Visible(nil, models.Preferences{Stores: []string{"amazon"}})
	assert.False(t, fellBack)
	assert.Empty(t, got)
}

func TestMatchIgnoresBlankPreferenceStrings(t *testing.T) {
	o := models.Offer{Store: "Amazon"}
	assert.False(t, Match(o, models.Preferences{Stores: []string{"  "}}))
}
