// Package ports defines the interfaces the geodata aggregator depends on.
// Adapters in internal/adapters implement them on top of the registry
// modules, keeping the aggregator free of cross-context imports.
package ports

import (
	"context"

	"pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/platform/address"
)

// ResolvedBuilding is a building resolved from the authoritative register.
type ResolvedBuilding struct {
	Facts    transport.BuildingFacts
	Location *transport.GeoPoint
}

// BuildingResolver resolves an address through the BAG register.
type BuildingResolver interface {
	ResolveBuilding(ctx context.Context, addr address.Normalized) (*ResolvedBuilding, error)
}

// AddressLocator resolves an address to a position through the public
// locator. Used when the register is unavailable or unconfigured.
type AddressLocator interface {
	Locate(ctx context.Context, addr address.Normalized) (*transport.GeoPoint, string, error)
}

// HeightModelSource provides 3D height model attributes for a position.
type HeightModelSource interface {
	HeightModel(ctx context.Context, lat, lon float64) (*transport.ThreeDFacts, error)
}

// TopographySource summarizes the surroundings of a position.
type TopographySource interface {
	Surroundings(ctx context.Context, lat, lon float64) (*transport.TopographicContext, error)
}

// ParcelSource provides the authoritative cadastral parcel for a position.
type ParcelSource interface {
	Parcel(ctx context.Context, lat, lon float64) (*transport.CadastralParcel, error)
}

// WalkabilitySource provides a walkability score for a position.
type WalkabilitySource interface {
	Walkability(ctx context.Context, addressText string, lat, lon float64) (*transport.WalkabilityScore, error)
}

// FeedbackSource provides the most recent public correction reports filed
// against a register object.
type FeedbackSource interface {
	Terugmeldingen(ctx context.Context, objectID string) ([]transport.Terugmelding, error)
}

// ValuationSource provides the WOZ valuation history for an address.
type ValuationSource interface {
	History(ctx context.Context, addr address.Normalized) (*transport.ValuationHistory, error)
}

// DossierAddress is the address line of an existing dossier.
type DossierAddress struct {
	DossierID   string
	Postcode    string
	AddressText string
}

// RecordRepository persists aggregated records per dossier.
type RecordRepository interface {
	Save(ctx context.Context, record *transport.AggregatedPropertyRecord) error
	FindByDossier(ctx context.Context, dossierID string) (*transport.AggregatedPropertyRecord, error)
	ListDossierAddresses(ctx context.Context) ([]DossierAddress, error)
}

// LookupCache caches serialized aggregated records by address key.
type LookupCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
