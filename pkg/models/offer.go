package models

// Offer is the normalized, internal form of a deal/coupon entry.
//
// Raw feed rows arrive with heterogeneous field names and shapes; the
// feed normalizer maps every source into this structure first, and the
// rest of the application only ever sees this representation. String
// fields are "" when the source had nothing, booleans default to false;
// consumers never have to nil-check.
type Offer struct {
	ID                 string  `json:"id"`                // "offer-<feed id>" or "data-<row id>"
	FeedID             int64   `json:"feed_id,omitempty"` // upstream numeric id, 0 when absent
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	LongOffer          string  `json:"long_offer,omitempty"` // long-form offer text
	Terms              string  `json:"terms,omitempty"`      // terms & conditions text
	Store              string  `json:"store"`
	Categories         string  `json:"categories"` // comma-separated free text, not a normalized set
	ImageURL           string  `json:"image_url,omitempty"`
	Code               string  `json:"code,omitempty"` // coupon code, optional
	Price              float64 `json:"price,omitempty"`
	OriginalPrice      float64 `json:"original_price,omitempty"`
	PriceEstimated     bool    `json:"price_estimated,omitempty"` // prices synthesized for display, not factual
	Savings            string  `json:"savings,omitempty"`         // display label, e.g. "25% OFF"
	StartDate          string  `json:"start_date,omitempty"`      // ISO date string
	EndDate            string  `json:"end_date,omitempty"`
	Featured           bool    `json:"featured,omitempty"`
	PublisherExclusive bool    `json:"publisher_exclusive,omitempty"`
	Sponsored          bool    `json:"sponsored,omitempty"`
	Status             string  `json:"status,omitempty"` // free text, e.g. "active"
	URL                string  `json:"url,omitempty"`
	Smartlink          string  `json:"smartlink,omitempty"` // affiliate redirect
	MerchantHomepage   string  `json:"merchant_homepage,omitempty"`
	IsAmazon           bool    `json:"is_amazon,omitempty"`
}
