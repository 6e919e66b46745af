// Package service provides business logic for WOZ valuation lookups.
package service

import (
	"context"
	"sort"

	pdoktransport "pandoorac_backend/internal/pdok/transport"
	"pandoorac_backend/internal/woz/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

// LocationResolver resolves an address to a locator document carrying the
// nummeraanduiding identifier.
type LocationResolver interface {
	ResolveAddress(ctx context.Context, addr address.Normalized) (*pdoktransport.Location, error)
}

// ValuationProvider returns the object details and valuation history for
// a nummeraanduiding.
type ValuationProvider interface {
	Valuations(ctx context.Context, nummeraanduidingID string) (transport.ObjectDetails, []transport.Valuation, error)
}

// Service handles WOZ lookups: it resolves the address to its
// nummeraanduiding and fetches the valuation history for it.
type Service struct {
	resolver LocationResolver
	provider ValuationProvider
	log      *logger.Logger
}

// New creates a new WOZ service.
func New(resolver LocationResolver, provider ValuationProvider, log *logger.Logger) *Service {
	return &Service{resolver: resolver, provider: provider, log: log}
}

// GetValuations returns the WOZ object for an address with its valuations
// sorted from newest to oldest reference date.
func (s *Service) GetValuations(ctx context.Context, addr address.Normalized) (*transport.WOZObject, error) {
	loc, err := s.resolver.ResolveAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	if loc.NummeraanduidingID == "" {
		return nil, apperr.NotFound("address has no nummeraanduiding").WithOp("woz.GetValuations")
	}

	details, valuations, err := s.provider.Valuations(ctx, loc.NummeraanduidingID)
	if err != nil {
		return nil, err
	}

	sort.Slice(valuations, func(i, j int) bool {
		return valuations[i].Peildatum > valuations[j].Peildatum
	})

	return &transport.WOZObject{
		NummeraanduidingID: loc.NummeraanduidingID,
		Adres:              loc.Weergavenaam,
		ObjectDetails:      details,
		Valuations:         valuations,
	}, nil
}
