// Package service provides business logic on top of the PDOK clients:
// summarizing surroundings and selecting the authoritative parcel.
package service

import (
	"context"
	"sort"

	"pandoorac_backend/internal/pdok/client"
	"pandoorac_backend/internal/pdok/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/logger"
)

// Service exposes the PDOK datasets to the rest of the application.
type Service struct {
	client *client.Client
	log    *logger.Logger
}

// New creates a new PDOK service.
func New(client *client.Client, log *logger.Logger) *Service {
	return &Service{client: client, log: log}
}

// ResolveAddress resolves an address through the public locator.
func (s *Service) ResolveAddress(ctx context.Context, addr address.Normalized) (*transport.Location, error) {
	return s.client.ResolveAddress(ctx, addr)
}

// ThreeDBuilding fetches the 3D height model for the building at a position.
func (s *Service) ThreeDBuilding(ctx context.Context, lat, lon float64) (*transport.ThreeDBuilding, error) {
	return s.client.ThreeDBuilding(ctx, lat, lon)
}

// SurroundingsSummary scans the topography around a position and reduces it
// to category counts plus the distinct source types seen.
func (s *Service) SurroundingsSummary(ctx context.Context, lat, lon float64) (*transport.TopographicSummary, error) {
	features, err := s.client.TopographicFeatures(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	summary := &transport.TopographicSummary{TotalFeatures: len(features)}
	tags := make(map[string]struct{})
	typed := 0

	for _, f := range features {
		if f.SourceType != "" {
			typed++
			tags[f.SourceType] = struct{}{}
		}
		switch f.Category {
		case transport.CategoryBuilding:
			summary.BuildingCount++
		case transport.CategoryInfrastructure:
			summary.InfrastructureCount++
		case transport.CategoryWater:
			summary.WaterCount++
		}
	}

	// Older dataset versions omit the type property; every feature in the
	// gebouw collection is then still a building.
	if typed == 0 {
		summary.BuildingCount = len(features)
	}

	for tag := range tags {
		summary.Tags = append(summary.Tags, tag)
	}
	sort.Strings(summary.Tags)

	return summary, nil
}

// latestTerugmeldingenLimit caps how many correction reports a caller gets:
// the two most recent ones tell whether the register entry is disputed.
const latestTerugmeldingenLimit = 2

// LatestTerugmeldingen returns the most recent correction reports filed
// against a register object, newest first.
func (s *Service) LatestTerugmeldingen(ctx context.Context, objectID string) ([]transport.Terugmelding, error) {
	meldingen, err := s.client.Terugmeldingen(ctx, objectID)
	if err != nil {
		return nil, err
	}

	// Registration timestamps are RFC 3339, so the lexicographic order is
	// the chronological order.
	sort.SliceStable(meldingen, func(i, j int) bool {
		return meldingen[i].DatumTijdRegistratie > meldingen[j].DatumTijdRegistratie
	})
	if len(meldingen) > latestTerugmeldingenLimit {
		meldingen = meldingen[:latestTerugmeldingenLimit]
	}
	return meldingen, nil
}

// PrimaryParcel returns the authoritative parcel for a position: the first
// parcel without a historic status, or the first parcel when all carry one.
func (s *Service) PrimaryParcel(ctx context.Context, lat, lon float64) (*transport.Parcel, error) {
	parcels, err := s.client.Parcels(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if len(parcels) == 0 {
		return nil, nil
	}

	for i := range parcels {
		if parcels[i].Status == "" {
			return &parcels[i], nil
		}
	}
	return &parcels[0], nil
}
