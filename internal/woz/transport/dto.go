// Package transport defines the data structures exchanged with the WOZ module.
package transport

// Valuation is a single WOZ valuation for a reference date.
type Valuation struct {
	Peildatum          string `json:"peildatum"`
	VastgesteldeWaarde int    `json:"vastgestelde_waarde"`
}

// ObjectDetails are the structured address fields a valuation provider
// reports for a WOZ object.
type ObjectDetails struct {
	Wozobjectnummer         string `json:"wozobjectnummer,omitempty"`
	Gemeentecode            string `json:"gemeentecode,omitempty"`
	KadastraleGemeenteCode  string `json:"kadastrale_gemeente_code,omitempty"`
	KadastraleSectie        string `json:"kadastrale_sectie,omitempty"`
	KadastraalPerceelnummer string `json:"kadastraal_perceel_nummer,omitempty"`
}

// WOZObject is the valuation history of an addressable object together
// with its structured address fields.
type WOZObject struct {
	NummeraanduidingID string `json:"nummeraanduiding_id"`
	Adres              string `json:"adres,omitempty"`
	ObjectDetails
	Valuations []Valuation `json:"valuations"`
}
