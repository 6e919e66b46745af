// Package transport defines the data structures exchanged with the PDOK module.
package transport

// Location is a resolved position from the locatieserver.
type Location struct {
	ID                 string  `json:"id"`
	Weergavenaam       string  `json:"weergavenaam"`
	Type               string  `json:"type"`
	NummeraanduidingID string  `json:"nummeraanduiding_id,omitempty"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	RDX                float64 `json:"rd_x"`
	RDY                float64 `json:"rd_y"`
}

// ThreeDBuilding holds height model attributes from the 3D basisvoorziening.
type ThreeDBuilding struct {
	Hoogte             float64 `json:"hoogte,omitempty"`
	Dakhoogte          float64 `json:"dakhoogte,omitempty"`
	Maaiveldhoogte     float64 `json:"maaiveldhoogte,omitempty"`
	Gebouwvolume       float64 `json:"gebouwvolume,omitempty"`
	Daktype            string  `json:"daktype,omitempty"`
	Model3DBeschikbaar bool    `json:"model3d_beschikbaar"`
}

// TopographicFeature is a single classified feature from the BRT top10nl.
type TopographicFeature struct {
	SourceType string `json:"source_type"`
	Category   string `json:"category"`
}

// Topographic feature categories.
const (
	CategoryBuilding       = "building"
	CategoryInfrastructure = "infrastructure"
	CategoryWater          = "water"
	CategoryOther          = "other"
)

// TopographicSummary describes the direct surroundings of a position.
type TopographicSummary struct {
	BuildingCount       int      `json:"building_count"`
	InfrastructureCount int      `json:"infrastructure_count"`
	WaterCount          int      `json:"water_count"`
	TotalFeatures       int      `json:"total_features"`
	Tags                []string `json:"tags,omitempty"`
}

// Terugmelding is a public correction report filed against a register
// object through the terugmeldingen API.
type Terugmelding struct {
	DatumTijdRegistratie string `json:"datum_tijd_registratie,omitempty"`
	Status               string `json:"status,omitempty"`
	Omschrijving         string `json:"omschrijving,omitempty"`
}

// Parcel is a cadastral parcel from the BRK kadastrale kaart.
type Parcel struct {
	LokaalID           string  `json:"lokaal_id"`
	KadastraleGemeente string  `json:"kadastrale_gemeente"`
	Sectie             string  `json:"sectie"`
	Perceelnummer      int     `json:"perceelnummer"`
	KadastraleGrootte  float64 `json:"kadastrale_grootte"`
	Gebruik            string  `json:"gebruik,omitempty"`
	SoortEigenaar      string  `json:"soort_eigenaar,omitempty"`
	Status             string  `json:"status,omitempty"`
}
