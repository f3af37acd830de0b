package models

// Preferences is a user's personalization record: the stores, brand
// categories and banks they have opted into. It is a fixed three-field
// record on purpose, so a mistyped preference kind is a compile error
// rather than a silently empty map key.
//
// Persisted remotely as individual (user_id, preference_type,
// preference_id) rows and reconstituted into this shape on load.
type Preferences struct {
	Stores []string `json:"stores"`
	Brands []string `json:"brands"` // brand/category preferences
	Banks  []string `json:"banks"`
}

// IsEmpty reports whether no preference of any kind is set. An empty
// preference set means "show everything".
func (p Preferences) IsEmpty() bool {
	return len(p.Stores) == 0 && len(p.Brands) == 0 && len(p.Banks) == 0
}

// Preference kinds as stored in the preference_type column.
const (
	PreferenceStore = "store"
	PreferenceBrand = "brand"
	PreferenceBank  = "bank"
)
