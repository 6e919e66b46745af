// Package service implements the geodata aggregation pipeline: one address
// in, one consolidated property record out.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pandoorac_backend/internal/geodata/ports"
	"pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

// Source names as recorded in DataQualityFlags.SourcesUsed, in the order
// they appear there.
const (
	SourceBAG         = "bag"
	SourcePDOK        = "pdok"
	Source3D          = "3d"
	SourceTopographic = "topographic"
	SourceCadastral   = "cadastral"
	SourceWalkScore   = "walkscore"
)

// Deps bundles the collaborators of the aggregation service. Building,
// Walkability, Feedback, Repository and Cache may be nil; the service then
// degrades to the sources that are available.
type Deps struct {
	Building    ports.BuildingResolver
	Locator     ports.AddressLocator
	Height      ports.HeightModelSource
	Topography  ports.TopographySource
	Parcels     ports.ParcelSource
	Walkability ports.WalkabilitySource
	Feedback    ports.FeedbackSource
	Valuations  ports.ValuationSource
	Repository  ports.RecordRepository
	Cache       ports.LookupCache
	Logger      *logger.Logger

	// FanOutTimeout bounds the concurrent enrichment phase as a whole.
	FanOutTimeout time.Duration
}

// Service orchestrates the registry clients into aggregated records.
type Service struct {
	deps Deps
	now  func() time.Time
}

// New creates a new aggregation service.
func New(deps Deps) *Service {
	if deps.FanOutTimeout <= 0 {
		deps.FanOutTimeout = 45 * time.Second
	}
	return &Service{deps: deps, now: time.Now}
}

// Lookup aggregates all configured sources for one address. Invalid
// addresses fail with a validation error; any upstream failure degrades the
// record instead of failing the lookup. Persisting under a dossier is the
// one hard promise: a failed save is reported, not swallowed.
func (s *Service) Lookup(ctx context.Context, req transport.LookupRequest) (*transport.AggregatedPropertyRecord, error) {
	addr, err := address.Normalize(req.Postcode, req.HouseNumber, req.HouseLetter)
	if err != nil {
		return nil, apperr.Validation("invalid address").WithOp("geodata.Lookup")
	}

	cacheKey := "geodata:" + addr.SearchTerm()
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		cached.DossierID = req.DossierID
		return cached, nil
	}

	record := s.aggregate(ctx, req.DossierID, addr)

	if s.deps.Cache != nil && record.Quality.HasBasicInfo {
		if raw, err := json.Marshal(record); err == nil {
			if err := s.deps.Cache.Set(ctx, cacheKey, raw); err != nil {
				s.deps.Logger.Warn("geodata cache write failed", "key", cacheKey, "error", err)
			}
		}
	}

	if s.deps.Repository != nil && req.DossierID != "" {
		if err := s.deps.Repository.Save(ctx, record); err != nil {
			s.deps.Logger.DatabaseError("save geodata record", err)
			return nil, apperr.Wrap(apperr.KindInternal, "persist geodata record", err).WithOp("geodata.Lookup")
		}
	}

	return record, nil
}

func (s *Service) fromCache(ctx context.Context, key string) *transport.AggregatedPropertyRecord {
	if s.deps.Cache == nil {
		return nil
	}
	raw, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		s.deps.Logger.Warn("geodata cache read failed", "key", key, "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var record transport.AggregatedPropertyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		s.deps.Logger.Warn("geodata cache entry malformed", "key", key, "error", err)
		return nil
	}
	return &record
}

// aggregate runs the two-phase pipeline: resolve the address to a position,
// then enrich that position from the remaining sources concurrently.
func (s *Service) aggregate(ctx context.Context, dossierID string, addr address.Normalized) *transport.AggregatedPropertyRecord {
	record := &transport.AggregatedPropertyRecord{
		DossierID:   dossierID,
		Postcode:    addr.Postcode,
		HouseNumber: addr.HouseNumber,
		HouseLetter: addr.HouseLetter,
		RetrievedAt: s.now(),
		Quality:     transport.DataQualityFlags{SourcesUsed: []string{}},
	}

	primarySource := ""
	if s.deps.Building != nil {
		resolved, err := s.deps.Building.ResolveBuilding(ctx, addr)
		if err != nil {
			s.deps.Logger.Warn("building register lookup failed, falling back to locator",
				"address", addr.SearchTerm(), "error", err)
		} else {
			facts := resolved.Facts
			record.Building = &facts
			record.Location = resolved.Location
			primarySource = SourceBAG
		}
	}

	if record.Location == nil && s.deps.Locator != nil {
		point, name, err := s.deps.Locator.Locate(ctx, addr)
		if err != nil {
			s.deps.Logger.Warn("locator resolution failed", "address", addr.SearchTerm(), "error", err)
		} else {
			record.Location = point
			record.DisplayName = name
			if primarySource == "" {
				primarySource = SourcePDOK
			}
		}
	}

	if primarySource != "" {
		record.Quality.SourcesUsed = append(record.Quality.SourcesUsed, primarySource)
	}
	record.Quality.HasBasicInfo = record.Building != nil || record.Location != nil

	if record.Location == nil {
		// Without a position nothing more can be fetched. The caller still
		// gets a record; all flags stay false.
		record.Classification = Classify(record)
		return record
	}

	s.enrich(ctx, record, addr)
	record.Classification = Classify(record)
	return record
}

// enrich fans out to the positional sources under one shared deadline. Each
// branch captures its own result; a failing branch degrades the record but
// never aborts the others.
func (s *Service) enrich(ctx context.Context, record *transport.AggregatedPropertyRecord, addr address.Normalized) {
	lat, lon := record.Location.Latitude, record.Location.Longitude
	addressText := record.DisplayName
	if addressText == "" {
		addressText = addr.SearchTerm()
	}

	fanCtx, cancel := context.WithTimeout(ctx, s.deps.FanOutTimeout)
	defer cancel()

	var (
		threeD     *transport.ThreeDFacts
		topography *transport.TopographicContext
		parcel     *transport.CadastralParcel
		walk       *transport.WalkabilityScore
		meldingen  []transport.Terugmelding
	)

	g, gctx := errgroup.WithContext(fanCtx)

	if s.deps.Height != nil {
		g.Go(func() error {
			res, err := s.deps.Height.HeightModel(gctx, lat, lon)
			if err != nil {
				s.deps.Logger.Warn("height model lookup failed", "error", err)
				return nil
			}
			threeD = res
			return nil
		})
	}
	if s.deps.Topography != nil {
		g.Go(func() error {
			res, err := s.deps.Topography.Surroundings(gctx, lat, lon)
			if err != nil {
				s.deps.Logger.Warn("topography lookup failed", "error", err)
				return nil
			}
			topography = res
			return nil
		})
	}
	if s.deps.Parcels != nil {
		g.Go(func() error {
			res, err := s.deps.Parcels.Parcel(gctx, lat, lon)
			if err != nil {
				s.deps.Logger.Warn("parcel lookup failed", "error", err)
				return nil
			}
			parcel = res
			return nil
		})
	}
	if s.deps.Walkability != nil {
		g.Go(func() error {
			res, err := s.deps.Walkability.Walkability(gctx, addressText, lat, lon)
			if err != nil {
				s.deps.Logger.Warn("walkability lookup failed", "error", err)
				return nil
			}
			walk = res
			return nil
		})
	}

	if s.deps.Feedback != nil && record.Building != nil && record.Building.VerblijfsobjectID != "" {
		objectID := record.Building.VerblijfsobjectID
		g.Go(func() error {
			res, err := s.deps.Feedback.Terugmeldingen(gctx, objectID)
			if err != nil {
				s.deps.Logger.Warn("terugmeldingen lookup failed", "error", err)
				return nil
			}
			meldingen = res
			return nil
		})
	}

	// Branches swallow their own errors, so Wait only reports cancellation.
	_ = g.Wait()

	record.ThreeD = threeD
	record.Topography = topography
	record.Parcel = parcel
	record.Walkability = walk
	record.Terugmeldingen = meldingen

	record.Quality.Has3DData = threeD != nil && threeD.ModelAvailable
	record.Quality.HasTopographicData = topography != nil
	record.Quality.HasCadastralData = parcel != nil

	if record.Quality.Has3DData {
		record.Quality.SourcesUsed = append(record.Quality.SourcesUsed, Source3D)
	}
	if record.Quality.HasTopographicData {
		record.Quality.SourcesUsed = append(record.Quality.SourcesUsed, SourceTopographic)
	}
	if record.Quality.HasCadastralData {
		record.Quality.SourcesUsed = append(record.Quality.SourcesUsed, SourceCadastral)
	}
	if walk != nil {
		record.Quality.SourcesUsed = append(record.Quality.SourcesUsed, SourceWalkScore)
	}
}

// GetRecord returns the stored record for a dossier.
func (s *Service) GetRecord(ctx context.Context, dossierID string) (*transport.AggregatedPropertyRecord, error) {
	if s.deps.Repository == nil {
		return nil, apperr.Unavailable("dossier store not configured")
	}
	return s.deps.Repository.FindByDossier(ctx, dossierID)
}

// Valuations returns the WOZ valuation history for an address.
func (s *Service) Valuations(ctx context.Context, q transport.AddressQuery) (*transport.ValuationHistory, error) {
	addr, err := address.Normalize(q.Postcode, q.HouseNumber, q.HouseLetter)
	if err != nil {
		return nil, apperr.Validation("invalid address").WithOp("geodata.Valuations")
	}
	if s.deps.Valuations == nil {
		return nil, apperr.Unavailable("valuation source not configured")
	}
	return s.deps.Valuations.History(ctx, addr)
}

// WalkabilityForAddress resolves an address to a position and fetches its
// walkability score. Unlike Lookup this propagates upstream errors, so the
// caller can distinguish a pending score from a missing one.
func (s *Service) WalkabilityForAddress(ctx context.Context, q transport.AddressQuery) (*transport.WalkabilityScore, error) {
	addr, err := address.Normalize(q.Postcode, q.HouseNumber, q.HouseLetter)
	if err != nil {
		return nil, apperr.Validation("invalid address").WithOp("geodata.Walkability")
	}
	if s.deps.Walkability == nil {
		return nil, apperr.Unavailable("walkability source not configured")
	}

	var (
		location    *transport.GeoPoint
		addressText = addr.SearchTerm()
	)
	if s.deps.Building != nil {
		if resolved, err := s.deps.Building.ResolveBuilding(ctx, addr); err == nil && resolved.Location != nil {
			location = resolved.Location
		}
	}
	if location == nil && s.deps.Locator != nil {
		point, name, err := s.deps.Locator.Locate(ctx, addr)
		if err != nil {
			return nil, err
		}
		location = point
		if name != "" {
			addressText = name
		}
	}
	if location == nil {
		return nil, apperr.NotFound("address could not be positioned")
	}

	return s.deps.Walkability.Walkability(ctx, addressText, location.Latitude, location.Longitude)
}

// DuplicateCheck reports the dossiers already registered on an address.
// House numbers are compared as parsed integers: dossier "Pippelingstraat 31"
// never matches a check for number 3 or 314.
func (s *Service) DuplicateCheck(ctx context.Context, req transport.DuplicateCheckRequest) (*transport.DuplicateCheckResult, error) {
	addr, err := address.Normalize(req.Postcode, req.HouseNumber, "")
	if err != nil {
		return nil, apperr.Validation("invalid address").WithOp("geodata.DuplicateCheck")
	}
	if s.deps.Repository == nil {
		return nil, apperr.Unavailable("dossier store not configured")
	}

	target, ok := addr.HouseNumberInt()
	if !ok {
		return nil, apperr.Validation("house number is not numeric").WithOp("geodata.DuplicateCheck")
	}

	existing, err := s.deps.Repository.ListDossierAddresses(ctx)
	if err != nil {
		return nil, err
	}

	result := &transport.DuplicateCheckResult{}
	for _, d := range existing {
		if !samePostcode(d.Postcode, addr.Postcode) {
			continue
		}
		number, ok := address.HouseNumberFromText(d.AddressText)
		if !ok || number != target {
			continue
		}
		result.DossierIDs = append(result.DossierIDs, d.DossierID)
	}
	result.Duplicate = len(result.DossierIDs) > 0
	return result, nil
}

func samePostcode(a, b string) bool {
	return strings.EqualFold(strings.ReplaceAll(a, " ", ""), strings.ReplaceAll(b, " ", ""))
}
