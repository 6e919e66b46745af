// Package adapters implements the geodata ports on top of the registry
// modules. Each adapter converts a registry's transport types into the
// aggregator's own model, so the bounded contexts stay decoupled.
package adapters

import (
	"context"

	bagservice "pandoorac_backend/internal/bag/service"
	"pandoorac_backend/internal/geodata/ports"
	"pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/platform/address"
)

// BAGBuildingResolver adapts the BAG service to the BuildingResolver port.
type BAGBuildingResolver struct {
	service *bagservice.Service
}

// NewBAGBuildingResolver creates the adapter.
func NewBAGBuildingResolver(service *bagservice.Service) *BAGBuildingResolver {
	return &BAGBuildingResolver{service: service}
}

// ResolveBuilding implements ports.BuildingResolver.
func (a *BAGBuildingResolver) ResolveBuilding(ctx context.Context, addr address.Normalized) (*ports.ResolvedBuilding, error) {
	data, err := a.service.LookupBuilding(ctx, addr)
	if err != nil {
		return nil, err
	}

	resolved := &ports.ResolvedBuilding{
		Facts: transport.BuildingFacts{
			VerblijfsobjectID: data.VerblijfsobjectID,
			PandID:            data.PandID,
			Bouwjaar:          data.Bouwjaar,
			Oppervlakte:       data.Oppervlakte,
			Inhoud:            data.Inhoud,
			Hoogte:            data.Hoogte,
			AantalBouwlagen:   data.AantalBouwlagen,
			Gebruiksdoelen:    data.Gebruiksdoelen,
		},
	}
	if data.Geodata != nil {
		resolved.Location = &transport.GeoPoint{
			Latitude:  data.Geodata.Latitude,
			Longitude: data.Geodata.Longitude,
			RDX:       data.Geodata.RDX,
			RDY:       data.Geodata.RDY,
		}
	}
	return resolved, nil
}
