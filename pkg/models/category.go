package models

// Category is a browsable offer facet. Curated categories come from the
// categories table; dynamic ones are synthesized from offer frequency at
// read time and carry a Count.
type Category struct {
	ID    string `json:"id"` // slug
	Name  string `json:"name"`
	Icon  string `json:"icon"` // symbolic icon name for the UI
	Count int    `json:"count,omitempty"`
}
