// Package transport defines the data structures exchanged with the BAG module.
package transport

// Geodata holds the resolved position of a building in both coordinate systems.
type Geodata struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RDX       float64 `json:"rd_x"`
	RDY       float64 `json:"rd_y"`
}

// BuildingData is the normalized result of a BAG lookup: verblijfsobject
// attributes merged with the attributes of the pand it belongs to.
type BuildingData struct {
	VerblijfsobjectID string   `json:"verblijfsobject_id"`
	PandID            string   `json:"pand_id"`
	Bouwjaar          int      `json:"bouwjaar,omitempty"`
	Oppervlakte       float64  `json:"oppervlakte,omitempty"`
	Inhoud            float64  `json:"inhoud,omitempty"`
	Hoogte            float64  `json:"hoogte,omitempty"`
	AantalBouwlagen   int      `json:"aantal_bouwlagen,omitempty"`
	Gebruiksdoelen    []string `json:"gebruiksdoelen,omitempty"`
	Geodata           *Geodata `json:"geodata,omitempty"`
}
