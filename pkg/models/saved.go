package models

import "time"

// SavedOffer is a user's bookmark on an offer, with a small lifecycle
// status ("saved" or "redeemed").
type SavedOffer struct {
	UserID  string    `json:"user_id"`
	OfferID string    `json:"offer_id"`
	Status  string    `json:"status"`
	SavedAt time.Time `json:"saved_at"`
}

// Review is a user rating/comment on an offer.
type Review struct {
	ID      int64     `json:"id"`
	UserID  string    `json:"user_id"`
	OfferID string    `json:"offer_id"`
	Rating  int       `json:"rating"` // 1..5
	Text    string    `json:"text,omitempty"`
	At      time.Time `json:"at"`
}
