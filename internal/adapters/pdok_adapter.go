package adapters

import (
	"context"

	"pandoorac_backend/internal/geodata/transport"
	pdokservice "pandoorac_backend/internal/pdok/service"
	"pandoorac_backend/platform/address"
)

// PDOKLocator adapts the locatieserver to the AddressLocator port.
type PDOKLocator struct {
	service *pdokservice.Service
}

// NewPDOKLocator creates the adapter.
func NewPDOKLocator(service *pdokservice.Service) *PDOKLocator {
	return &PDOKLocator{service: service}
}

// Locate implements ports.AddressLocator.
func (a *PDOKLocator) Locate(ctx context.Context, addr address.Normalized) (*transport.GeoPoint, string, error) {
	loc, err := a.service.ResolveAddress(ctx, addr)
	if err != nil {
		return nil, "", err
	}
	return &transport.GeoPoint{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		RDX:       loc.RDX,
		RDY:       loc.RDY,
	}, loc.Weergavenaam, nil
}

// PDOKHeightModel adapts the 3D basisvoorziening to the HeightModelSource port.
type PDOKHeightModel struct {
	service *pdokservice.Service
}

// NewPDOKHeightModel creates the adapter.
func NewPDOKHeightModel(service *pdokservice.Service) *PDOKHeightModel {
	return &PDOKHeightModel{service: service}
}

// HeightModel implements ports.HeightModelSource.
func (a *PDOKHeightModel) HeightModel(ctx context.Context, lat, lon float64) (*transport.ThreeDFacts, error) {
	b, err := a.service.ThreeDBuilding(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return &transport.ThreeDFacts{
		Hoogte:         b.Hoogte,
		Dakhoogte:      b.Dakhoogte,
		Maaiveldhoogte: b.Maaiveldhoogte,
		Gebouwvolume:   b.Gebouwvolume,
		Daktype:        b.Daktype,
		ModelAvailable: b.Model3DBeschikbaar,
	}, nil
}

// PDOKTopography adapts the BRT top10nl summary to the TopographySource port.
type PDOKTopography struct {
	service *pdokservice.Service
}

// NewPDOKTopography creates the adapter.
func NewPDOKTopography(service *pdokservice.Service) *PDOKTopography {
	return &PDOKTopography{service: service}
}

// Surroundings implements ports.TopographySource.
func (a *PDOKTopography) Surroundings(ctx context.Context, lat, lon float64) (*transport.TopographicContext, error) {
	summary, err := a.service.SurroundingsSummary(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return &transport.TopographicContext{
		BuildingCount:       summary.BuildingCount,
		InfrastructureCount: summary.InfrastructureCount,
		WaterCount:          summary.WaterCount,
		TotalFeatures:       summary.TotalFeatures,
		Tags:                summary.Tags,
	}, nil
}

// PDOKParcelSource adapts the kadastrale kaart to the ParcelSource port.
type PDOKParcelSource struct {
	service *pdokservice.Service
}

// NewPDOKParcelSource creates the adapter.
func NewPDOKParcelSource(service *pdokservice.Service) *PDOKParcelSource {
	return &PDOKParcelSource{service: service}
}

// Parcel implements ports.ParcelSource.
func (a *PDOKParcelSource) Parcel(ctx context.Context, lat, lon float64) (*transport.CadastralParcel, error) {
	p, err := a.service.PrimaryParcel(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &transport.CadastralParcel{
		LokaalID:           p.LokaalID,
		KadastraleGemeente: p.KadastraleGemeente,
		Sectie:             p.Sectie,
		Perceelnummer:      p.Perceelnummer,
		KadastraleGrootte:  p.KadastraleGrootte,
		Gebruik:            p.Gebruik,
		SoortEigenaar:      p.SoortEigenaar,
	}, nil
}

// PDOKFeedback adapts the terugmeldingen API to the FeedbackSource port.
type PDOKFeedback struct {
	service *pdokservice.Service
}

// NewPDOKFeedback creates the adapter.
func NewPDOKFeedback(service *pdokservice.Service) *PDOKFeedback {
	return &PDOKFeedback{service: service}
}

// Terugmeldingen implements ports.FeedbackSource.
func (a *PDOKFeedback) Terugmeldingen(ctx context.Context, objectID string) ([]transport.Terugmelding, error) {
	meldingen, err := a.service.LatestTerugmeldingen(ctx, objectID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.Terugmelding, 0, len(meldingen))
	for _, m := range meldingen {
		out = append(out, transport.Terugmelding{
			Registratiedatum: m.DatumTijdRegistratie,
			Status:           m.Status,
			Omschrijving:     m.Omschrijving,
		})
	}
	return out, nil
}
