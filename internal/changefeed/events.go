package changefeed

import "time"

// Event is a change-feed message. Events carry no payload guarantee
// beyond identity: subscribers re-fetch on receipt.
type Event interface {
	// Scope returns the user id the event is scoped to, or "" for a
	// global event delivered to every subscriber.
	Scope() string
}

// PreferenceEvent announces that a user's preference set changed.
type PreferenceEvent struct {
	Type   string    `json:"type"` // "preferences.update"
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

func NewPreferenceEvent(userID string) PreferenceEvent {
	return PreferenceEvent{Type: "preferences.update", UserID: userID, At: time.Now().UTC()}
}

func (e PreferenceEvent) Scope() string { return e.UserID }

// OfferEvent announces that the offer catalog was refreshed from the
// feed. Global: everyone should re-fetch.
type OfferEvent struct {
	Type  string    `json:"type"` // "offers.refresh"
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

func NewOfferEvent(count int) OfferEvent {
	return OfferEvent{Type: "offers.refresh", Count: count, At: time.Now().UTC()}
}

func (e OfferEvent) Scope() string { return "" }
