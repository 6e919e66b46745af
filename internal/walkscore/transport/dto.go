// Package transport defines the data structures exchanged with the
// WalkScore module.
package transport

// SubScore is a transit or bike score attached to the main walk score.
type SubScore struct {
	Score       int    `json:"score"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// Score is the walkability result for a position.
type Score struct {
	WalkScore   int       `json:"walkscore"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Updated     string    `json:"updated,omitempty"`
	SnappedLat  float64   `json:"snapped_lat,omitempty"`
	SnappedLon  float64   `json:"snapped_lon,omitempty"`
	WSLink      string    `json:"ws_link,omitempty"`
	Transit     *SubScore `json:"transit,omitempty"`
	Bike        *SubScore `json:"bike,omitempty"`
}
