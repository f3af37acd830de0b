package feed

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"offersmonkey/pkg/models"
)

// Normalizer maps raw feed rows into the canonical Offer shape. It is
// total: any input, including an empty row, produces a usable Offer
// with defaulted fields and never an error.
//
// The feed rarely carries real numeric prices, only a textual "offer
// value" like "25%" or "₹200", so display prices are synthesized from
// it. Every synthesized figure is marked PriceEstimated so no caller
// can mistake it for a factual price.
type Normalizer struct {
	rand *rand.Rand
}

// NewNormalizer returns a normalizer using the given source for price
// synthesis. Pass a seeded source in tests for determinism; nil uses a
// default source.
func NewNormalizer(r *rand.Rand) *Normalizer {
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Normalizer{rand: r}
}

// Normalize converts one raw row into an Offer.
func (n *Normalizer) Normalize(row Row) models.Offer {
	o := models.Offer{
		Title:              row.str("title", "offer_text", "offerText"),
		Description:        row.str("description", "desc"),
		LongOffer:          row.str("long_offer", "longOffer"),
		Terms:              row.str("terms_and_conditions", "terms"),
		Store:              row.str("store", "store_name", "storeName"),
		Categories:         row.str("categories", "category"),
		ImageURL:           row.str("image_url", "imageUrl", "image"),
		Code:               row.str("code", "coupon_code", "couponCode"),
		StartDate:          row.str("start_date", "startDate"),
		EndDate:            row.str("end_date", "endDate"),
		Featured:           row.boolean("featured"),
		PublisherExclusive: row.boolean("publisher_exclusive", "publisherExclusive"),
		Sponsored:          row.boolean("sponsored"),
		Status:             row.str("status"),
		URL:                row.str("url", "link"),
		Smartlink:          row.str("smartlink", "smart_link", "smartLink"),
		MerchantHomepage:   row.str("merchant_homepage", "merchantHomepage", "merchant_url"),
	}

	if feedID := row.int64("lmd_id", "lmdId", "feed_id"); feedID != 0 {
		o.FeedID = feedID
		o.ID = fmt.Sprintf("offer-%d", feedID)
	} else if rowID := row.str("id", "row_id"); rowID != "" {
		o.ID = "data-" + rowID
	} else {
		o.ID = "data-" + uuid.NewString()
	}

	n.derivePrices(&o, row.str("offer_value", "offerValue", "offer"))

	o.IsAmazon = containsFold(o.Store, "amazon") || containsFold(o.MerchantHomepage, "amazon")

	return o
}

// derivePrices turns the textual offer value into display prices and a
// savings label. These numbers are stand-ins so offer cards have
// something to show; PriceEstimated is always set when they are
// invented.
func (n *Normalizer) derivePrices(o *models.Offer, value string) {
	if pct, ok := parsePercent(value); ok {
		base := float64(1000 + n.rand.Intn(9000))
		o.OriginalPrice = base
		o.Price = base * (1 - float64(pct)/100)
		o.PriceEstimated = true
		o.Savings = fmt.Sprintf("%d%% OFF", pct)
		return
	}

	if amount, ok := parseAmount(value); ok {
		offset := float64(100 + n.rand.Intn(500))
		o.Price = float64(amount)
		o.OriginalPrice = float64(amount) + offset
		o.PriceEstimated = true
		o.Savings = fmt.Sprintf("Save ₹%.0f", offset)
		return
	}

	price := float64(1000 + n.rand.Intn(9000))
	offset := float64(100 + n.rand.Intn(500))
	o.Price = price
	o.OriginalPrice = price + offset
	o.PriceEstimated = true
	o.Savings = fmt.Sprintf("Save ₹%.0f", offset)
}

// parsePercent extracts the integer immediately preceding a percent
// sign, e.g. "Flat 25% OFF" -> 25.
func parsePercent(s string) (int, bool) {
	idx := strings.IndexByte(s, '%')
	if idx <= 0 {
		return 0, false
	}
	end := idx
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	var pct int
	for _, c := range s[start:end] {
		pct = pct*10 + int(c-'0')
	}
	return pct, true
}

// parseAmount extracts the first digit run as an absolute amount,
// e.g. "₹200 cashback" -> 200.
func parseAmount(s string) (int, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	amount := 0
	for i := start; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		amount = amount*10 + int(s[i]-'0')
	}
	return amount, true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
