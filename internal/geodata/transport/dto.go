// Package transport defines the request and response structures of the
// geodata aggregation API.
package transport

import "time"

// GeoPoint is a position in both WGS84 and RD coordinates.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RDX       float64 `json:"rd_x,omitempty"`
	RDY       float64 `json:"rd_y,omitempty"`
}

// BuildingFacts holds the register attributes of the building at an address.
type BuildingFacts struct {
	VerblijfsobjectID string   `json:"verblijfsobject_id,omitempty"`
	PandID            string   `json:"pand_id,omitempty"`
	Bouwjaar          int      `json:"bouwjaar,omitempty"`
	Oppervlakte       float64  `json:"oppervlakte,omitempty"`
	Inhoud            float64  `json:"inhoud,omitempty"`
	Hoogte            float64  `json:"hoogte,omitempty"`
	AantalBouwlagen   int      `json:"aantal_bouwlagen,omitempty"`
	Gebruiksdoelen    []string `json:"gebruiksdoelen,omitempty"`
}

// ThreeDFacts holds height model attributes for the building.
type ThreeDFacts struct {
	Hoogte         float64 `json:"hoogte,omitempty"`
	Dakhoogte      float64 `json:"dakhoogte,omitempty"`
	Maaiveldhoogte float64 `json:"maaiveldhoogte,omitempty"`
	Gebouwvolume   float64 `json:"gebouwvolume,omitempty"`
	Daktype        string  `json:"daktype,omitempty"`
	ModelAvailable bool    `json:"model_available"`
}

// TopographicContext summarizes the direct surroundings of the address.
type TopographicContext struct {
	BuildingCount       int      `json:"building_count"`
	InfrastructureCount int      `json:"infrastructure_count"`
	WaterCount          int      `json:"water_count"`
	TotalFeatures       int      `json:"total_features"`
	Tags                []string `json:"tags,omitempty"`
}

// CadastralParcel is the authoritative parcel under the building.
type CadastralParcel struct {
	LokaalID           string  `json:"lokaal_id"`
	KadastraleGemeente string  `json:"kadastrale_gemeente,omitempty"`
	Sectie             string  `json:"sectie,omitempty"`
	Perceelnummer      int     `json:"perceelnummer,omitempty"`
	KadastraleGrootte  float64 `json:"kadastrale_grootte,omitempty"`
	Gebruik            string  `json:"gebruik,omitempty"`
	SoortEigenaar      string  `json:"soort_eigenaar,omitempty"`
}

// WalkabilityScore is a walkability result with optional sub scores.
type WalkabilityScore struct {
	WalkScore    int     `json:"walkscore"`
	Category     string  `json:"category"`
	Description  string  `json:"description,omitempty"`
	TransitScore *int    `json:"transit_score,omitempty"`
	BikeScore    *int    `json:"bike_score,omitempty"`
	SnappedLat   float64 `json:"snapped_lat,omitempty"`
	SnappedLon   float64 `json:"snapped_lon,omitempty"`
}

// Valuation is a single WOZ valuation for a reference date.
type Valuation struct {
	Peildatum          string `json:"peildatum"`
	VastgesteldeWaarde int    `json:"vastgestelde_waarde"`
}

// ValuationHistory is the WOZ valuation history of an address.
type ValuationHistory struct {
	NummeraanduidingID      string      `json:"nummeraanduiding_id"`
	Adres                   string      `json:"adres,omitempty"`
	Wozobjectnummer         string      `json:"wozobjectnummer,omitempty"`
	Gemeentecode            string      `json:"gemeentecode,omitempty"`
	KadastraleGemeenteCode  string      `json:"kadastrale_gemeente_code,omitempty"`
	KadastraleSectie        string      `json:"kadastrale_sectie,omitempty"`
	KadastraalPerceelnummer string      `json:"kadastraal_perceel_nummer,omitempty"`
	Valuations              []Valuation `json:"valuations"`
}

// Terugmelding is a public correction report filed against the building
// register entry of the address.
type Terugmelding struct {
	Registratiedatum string `json:"registratiedatum,omitempty"`
	Status           string `json:"status,omitempty"`
	Omschrijving     string `json:"omschrijving,omitempty"`
}

// PropertyClassification categorizes a property and scores how complete the
// collected data is for appraisal purposes.
type PropertyClassification struct {
	Category       string `json:"category"`
	RelevanceScore int    `json:"relevance_score"`
}

// DataQualityFlags records which sources contributed to a record.
type DataQualityFlags struct {
	HasBasicInfo       bool     `json:"has_basic_info"`
	Has3DData          bool     `json:"has_3d_data"`
	HasCadastralData   bool     `json:"has_cadastral_data"`
	HasTopographicData bool     `json:"has_topographic_data"`
	SourcesUsed        []string `json:"sources_used"`
}

// AggregatedPropertyRecord is the full result of a geodata lookup.
type AggregatedPropertyRecord struct {
	DossierID      string                  `json:"dossier_id,omitempty"`
	Postcode       string                  `json:"postcode"`
	HouseNumber    string                  `json:"house_number"`
	HouseLetter    string                  `json:"house_letter,omitempty"`
	DisplayName    string                  `json:"display_name,omitempty"`
	Location       *GeoPoint               `json:"location,omitempty"`
	Building       *BuildingFacts          `json:"building,omitempty"`
	ThreeD         *ThreeDFacts            `json:"three_d,omitempty"`
	Topography     *TopographicContext     `json:"topography,omitempty"`
	Parcel         *CadastralParcel        `json:"parcel,omitempty"`
	Walkability    *WalkabilityScore       `json:"walkability,omitempty"`
	Terugmeldingen []Terugmelding          `json:"terugmeldingen,omitempty"`
	Classification *PropertyClassification `json:"classification,omitempty"`
	Quality        DataQualityFlags        `json:"quality"`
	RetrievedAt    time.Time               `json:"retrieved_at"`
}

// =============================================================================
// Requests
// =============================================================================

// LookupRequest asks for an aggregated record for one address.
type LookupRequest struct {
	DossierID   string `json:"dossier_id" validate:"omitempty,max=64"`
	Postcode    string `json:"postcode" validate:"required,max=10"`
	HouseNumber string `json:"house_number" validate:"required,max=10"`
	HouseLetter string `json:"house_letter" validate:"omitempty,max=5"`
}

// AddressQuery is the query form of an address, used by the GET endpoints.
type AddressQuery struct {
	Postcode    string `form:"postcode" validate:"required,max=10"`
	HouseNumber string `form:"house_number" validate:"required,max=10"`
	HouseLetter string `form:"house_letter" validate:"omitempty,max=5"`
}

// DuplicateCheckRequest asks whether an address already has a dossier.
type DuplicateCheckRequest struct {
	Postcode    string `json:"postcode" validate:"required,max=10"`
	HouseNumber string `json:"house_number" validate:"required,max=10"`
}

// DuplicateCheckResult lists the dossiers already registered on an address.
type DuplicateCheckResult struct {
	Duplicate  bool     `json:"duplicate"`
	DossierIDs []string `json:"dossier_ids,omitempty"`
}

// MapDataQuery asks for the tile position of a coordinate.
type MapDataQuery struct {
	Latitude  float64 `form:"lat" validate:"required"`
	Longitude float64 `form:"lon" validate:"required"`
	Zoom      int     `form:"zoom" validate:"omitempty,min=0,max=22"`
}

// MapData positions a coordinate on the slippy map tile grid.
type MapData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	TileX     int     `json:"tile_x"`
	TileY     int     `json:"tile_y"`
}
