package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pandoorac_backend/internal/geodata/ports"
	"pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeBuilding struct {
	resolved *ports.ResolvedBuilding
	err      error
	calls    int
}

func (f *fakeBuilding) ResolveBuilding(_ context.Context, _ address.Normalized) (*ports.ResolvedBuilding, error) {
	f.calls++
	return f.resolved, f.err
}

type fakeLocator struct {
	point *transport.GeoPoint
	name  string
	err   error
	calls int
}

func (f *fakeLocator) Locate(_ context.Context, _ address.Normalized) (*transport.GeoPoint, string, error) {
	f.calls++
	return f.point, f.name, f.err
}

type fakeHeight struct {
	facts *transport.ThreeDFacts
	err   error
}

func (f *fakeHeight) HeightModel(_ context.Context, _, _ float64) (*transport.ThreeDFacts, error) {
	return f.facts, f.err
}

type fakeTopo struct {
	ctx *transport.TopographicContext
	err error
}

func (f *fakeTopo) Surroundings(_ context.Context, _, _ float64) (*transport.TopographicContext, error) {
	return f.ctx, f.err
}

type fakeParcel struct {
	parcel *transport.CadastralParcel
	err    error
}

func (f *fakeParcel) Parcel(_ context.Context, _, _ float64) (*transport.CadastralParcel, error) {
	return f.parcel, f.err
}

type fakeWalk struct {
	score *transport.WalkabilityScore
	err   error
}

func (f *fakeWalk) Walkability(_ context.Context, _ string, _, _ float64) (*transport.WalkabilityScore, error) {
	return f.score, f.err
}

type fakeFeedback struct {
	meldingen []transport.Terugmelding
	err       error
	objectIDs []string
}

func (f *fakeFeedback) Terugmeldingen(_ context.Context, objectID string) ([]transport.Terugmelding, error) {
	f.objectIDs = append(f.objectIDs, objectID)
	return f.meldingen, f.err
}

type fakeRepo struct {
	saved     []*transport.AggregatedPropertyRecord
	addresses []ports.DossierAddress
	saveErr   error
}

func (f *fakeRepo) Save(_ context.Context, record *transport.AggregatedPropertyRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeRepo) FindByDossier(_ context.Context, dossierID string) (*transport.AggregatedPropertyRecord, error) {
	for _, r := range f.saved {
		if r.DossierID == dossierID {
			return r, nil
		}
	}
	return nil, apperr.NotFound("no geodata record for dossier")
}

func (f *fakeRepo) ListDossierAddresses(_ context.Context) ([]ports.DossierAddress, error) {
	return f.addresses, nil
}

type fakeCache struct {
	entries map[string][]byte
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte) error {
	if f.entries == nil {
		f.entries = map[string][]byte{}
	}
	f.entries[key] = value
	f.sets++
	return nil
}

// =============================================================================
// Fixtures
// =============================================================================

func fullDeps() Deps {
	return Deps{
		Building: &fakeBuilding{resolved: &ports.ResolvedBuilding{
			Facts: transport.BuildingFacts{
				VerblijfsobjectID: "V1",
				PandID:            "P1",
				Bouwjaar:          1931,
				Oppervlakte:       120,
				Gebruiksdoelen:    []string{"woonfunctie"},
			},
			Location: &transport.GeoPoint{Latitude: 52.0575, Longitude: 4.2597},
		}},
		Locator: &fakeLocator{point: &transport.GeoPoint{Latitude: 52.0575, Longitude: 4.2597}, name: "Pippelingstraat 31"},
		Height: &fakeHeight{facts: &transport.ThreeDFacts{
			Hoogte: 12.5, Gebouwvolume: 450, Daktype: "zadeldak", ModelAvailable: true,
		}},
		Topography: &fakeTopo{ctx: &transport.TopographicContext{
			BuildingCount: 24, TotalFeatures: 30, Tags: []string{"gebouw", "weg"},
		}},
		Parcels: &fakeParcel{parcel: &transport.CadastralParcel{
			LokaalID: "HGL00-D-3040", KadastraleGrootte: 145,
		}},
		Walkability: &fakeWalk{score: &transport.WalkabilityScore{WalkScore: 88, Category: "Very Walkable"}},
		Logger:      logger.New("development"),
	}
}

func lookupReq() transport.LookupRequest {
	return transport.LookupRequest{Postcode: "2564 RC", HouseNumber: "31"}
}

// =============================================================================
// Lookup
// =============================================================================

func TestLookup_AllSources(t *testing.T) {
	record, err := New(fullDeps()).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if record.Postcode != "2564RC" || record.HouseNumber != "31" {
		t.Fatalf("unexpected normalized address: %+v", record)
	}
	if record.Building == nil || record.Building.Bouwjaar != 1931 {
		t.Fatalf("unexpected building: %+v", record.Building)
	}
	if record.ThreeD == nil || record.Topography == nil || record.Parcel == nil || record.Walkability == nil {
		t.Fatalf("expected all enrichments: %+v", record)
	}

	q := record.Quality
	if !q.HasBasicInfo || !q.Has3DData || !q.HasCadastralData || !q.HasTopographicData {
		t.Fatalf("unexpected quality flags: %+v", q)
	}
	want := []string{SourceBAG, Source3D, SourceTopographic, SourceCadastral, SourceWalkScore}
	if len(q.SourcesUsed) != len(want) {
		t.Fatalf("sources = %v, want %v", q.SourcesUsed, want)
	}
	for i, source := range want {
		if q.SourcesUsed[i] != source {
			t.Fatalf("sources = %v, want %v", q.SourcesUsed, want)
		}
	}

	if record.Classification == nil || record.Classification.Category != CategoryResidential {
		t.Fatalf("unexpected classification: %+v", record.Classification)
	}
}

func TestLookup_TerugmeldingenAttachedForRegisteredBuilding(t *testing.T) {
	deps := fullDeps()
	feedback := &fakeFeedback{meldingen: []transport.Terugmelding{
		{Registratiedatum: "2025-06-12T14:30:00Z", Status: "IN_ONDERZOEK", Omschrijving: "pand gesloopt"},
		{Registratiedatum: "2024-11-20T08:15:00Z", Status: "AFGEROND", Omschrijving: "oppervlakte onjuist"},
	}}
	deps.Feedback = feedback

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if len(record.Terugmeldingen) != 2 || record.Terugmeldingen[0].Status != "IN_ONDERZOEK" {
		t.Fatalf("unexpected terugmeldingen: %+v", record.Terugmeldingen)
	}
	if len(feedback.objectIDs) != 1 || feedback.objectIDs[0] != "V1" {
		t.Fatalf("expected lookup by verblijfsobject id, got %v", feedback.objectIDs)
	}
	for _, source := range record.Quality.SourcesUsed {
		if source == "terugmeldingen" {
			t.Fatalf("correction reports are context, not a source: %v", record.Quality.SourcesUsed)
		}
	}
}

func TestLookup_NoTerugmeldingenWithoutRegisteredBuilding(t *testing.T) {
	deps := fullDeps()
	deps.Building = &fakeBuilding{err: apperr.Upstream("bag down")}
	feedback := &fakeFeedback{meldingen: []transport.Terugmelding{{Status: "AFGEROND"}}}
	deps.Feedback = feedback

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if len(feedback.objectIDs) != 0 {
		t.Fatalf("expected no feedback calls, got %v", feedback.objectIDs)
	}
	if record.Terugmeldingen != nil {
		t.Fatalf("expected no terugmeldingen, got %+v", record.Terugmeldingen)
	}
}

func TestLookup_FallsBackToLocator(t *testing.T) {
	deps := fullDeps()
	deps.Building = &fakeBuilding{err: apperr.Upstream("bag down")}

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if record.Building != nil {
		t.Fatalf("expected no building facts, got %+v", record.Building)
	}
	if record.Location == nil || record.DisplayName != "Pippelingstraat 31" {
		t.Fatalf("expected locator position, got %+v", record)
	}
	if record.Quality.SourcesUsed[0] != SourcePDOK {
		t.Fatalf("expected pdok as primary source, got %v", record.Quality.SourcesUsed)
	}
}

func TestLookup_SurvivesCadastralFailure(t *testing.T) {
	deps := fullDeps()
	deps.Parcels = &fakeParcel{err: apperr.Upstream("brk down")}

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup must not fail on a cadastral outage: %v", err)
	}

	if record.Parcel != nil || record.Quality.HasCadastralData {
		t.Fatalf("expected degraded cadastral data: %+v", record)
	}
	if record.ThreeD == nil || record.Topography == nil {
		t.Fatal("other enrichments must survive")
	}
	for _, source := range record.Quality.SourcesUsed {
		if source == SourceCadastral {
			t.Fatalf("cadastral must not be listed: %v", record.Quality.SourcesUsed)
		}
	}
}

func TestLookup_DegradedRecordWhenNothingResolves(t *testing.T) {
	deps := fullDeps()
	deps.Building = &fakeBuilding{err: apperr.Upstream("bag down")}
	deps.Locator = &fakeLocator{err: apperr.NotFound("no match")}

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup must never fail on upstream outages: %v", err)
	}

	q := record.Quality
	if q.HasBasicInfo || q.Has3DData || q.HasCadastralData || q.HasTopographicData {
		t.Fatalf("expected all flags false: %+v", q)
	}
	if len(q.SourcesUsed) != 0 {
		t.Fatalf("expected no sources, got %v", q.SourcesUsed)
	}
	if record.Classification == nil || record.Classification.Category != CategoryUnknown {
		t.Fatalf("unexpected classification: %+v", record.Classification)
	}
}

func TestLookup_InvalidAddress(t *testing.T) {
	_, err := New(fullDeps()).Lookup(context.Background(), transport.LookupRequest{Postcode: "12", HouseNumber: "x"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLookup_CacheHitSkipsSources(t *testing.T) {
	deps := fullDeps()
	building := deps.Building.(*fakeBuilding)

	cached := &transport.AggregatedPropertyRecord{
		Postcode:    "2564RC",
		HouseNumber: "31",
		Quality:     transport.DataQualityFlags{HasBasicInfo: true, SourcesUsed: []string{SourceBAG}},
		RetrievedAt: time.Now(),
	}
	raw, _ := json.Marshal(cached)
	deps.Cache = &fakeCache{entries: map[string][]byte{"geodata:2564RC 31": raw}}

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if building.calls != 0 {
		t.Fatalf("cache hit must not reach the register, got %d calls", building.calls)
	}
	if !record.Quality.HasBasicInfo {
		t.Fatalf("unexpected cached record: %+v", record)
	}
}

func TestLookup_CachesAndPersists(t *testing.T) {
	deps := fullDeps()
	cache := &fakeCache{}
	repo := &fakeRepo{}
	deps.Cache = cache
	deps.Repository = repo

	req := lookupReq()
	req.DossierID = "dossier-1"

	if _, err := New(deps).Lookup(context.Background(), req); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}
	if len(repo.saved) != 1 || repo.saved[0].DossierID != "dossier-1" {
		t.Fatalf("expected persisted record, got %+v", repo.saved)
	}
}

func TestLookup_BuildingFactsCountAsBasicInfo(t *testing.T) {
	deps := fullDeps()
	deps.Building = &fakeBuilding{resolved: &ports.ResolvedBuilding{
		Facts: transport.BuildingFacts{Bouwjaar: 1931, Oppervlakte: 120},
	}}
	deps.Locator = &fakeLocator{err: apperr.NotFound("no match")}

	record, err := New(deps).Lookup(context.Background(), lookupReq())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if record.Building == nil || record.Location != nil {
		t.Fatalf("unexpected record: %+v", record)
	}
	if !record.Quality.HasBasicInfo {
		t.Fatal("register facts without a position must still count as basic info")
	}
	if len(record.Quality.SourcesUsed) != 1 || record.Quality.SourcesUsed[0] != SourceBAG {
		t.Fatalf("unexpected sources: %v", record.Quality.SourcesUsed)
	}
}

func TestLookup_SaveFailureSurfaces(t *testing.T) {
	deps := fullDeps()
	repo := &fakeRepo{saveErr: apperr.New(apperr.KindInternal, "connection lost")}
	deps.Repository = repo

	req := lookupReq()
	req.DossierID = "dossier-1"

	_, err := New(deps).Lookup(context.Background(), req)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error when the record cannot be persisted, got %v", err)
	}
}

func TestLookup_DegradedRecordNotCached(t *testing.T) {
	deps := fullDeps()
	deps.Building = &fakeBuilding{err: apperr.Upstream("bag down")}
	deps.Locator = &fakeLocator{err: apperr.NotFound("no match")}
	cache := &fakeCache{}
	deps.Cache = cache

	if _, err := New(deps).Lookup(context.Background(), lookupReq()); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cache.sets != 0 {
		t.Fatal("degraded records must not be cached")
	}
}

// =============================================================================
// Duplicate check
// =============================================================================

func TestDuplicateCheck(t *testing.T) {
	deps := fullDeps()
	deps.Repository = &fakeRepo{addresses: []ports.DossierAddress{
		{DossierID: "d-1", Postcode: "2564RC", AddressText: "Pippelingstraat 31"},
		{DossierID: "d-2", Postcode: "2564RC", AddressText: "Pippelingstraat 314"},
		{DossierID: "d-3", Postcode: "1012AB", AddressText: "Damrak 31"},
		{DossierID: "d-4", Postcode: "2564 rc", AddressText: "2564RC 31"},
	}}
	svc := New(deps)

	result, err := svc.DuplicateCheck(context.Background(), transport.DuplicateCheckRequest{
		Postcode: "2564rc", HouseNumber: "031",
	})
	if err != nil {
		t.Fatalf("duplicate check: %v", err)
	}

	if !result.Duplicate {
		t.Fatal("expected a duplicate")
	}
	want := []string{"d-1", "d-4"}
	if len(result.DossierIDs) != len(want) {
		t.Fatalf("dossiers = %v, want %v", result.DossierIDs, want)
	}
	for i, id := range want {
		if result.DossierIDs[i] != id {
			t.Fatalf("dossiers = %v, want %v", result.DossierIDs, want)
		}
	}
}

func TestDuplicateCheck_NoPartialNumberMatch(t *testing.T) {
	deps := fullDeps()
	deps.Repository = &fakeRepo{addresses: []ports.DossierAddress{
		{DossierID: "d-1", Postcode: "2564RC", AddressText: "Pippelingstraat 31"},
	}}

	result, err := New(deps).DuplicateCheck(context.Background(), transport.DuplicateCheckRequest{
		Postcode: "2564RC", HouseNumber: "3",
	})
	if err != nil {
		t.Fatalf("duplicate check: %v", err)
	}
	if result.Duplicate {
		t.Fatalf("number 3 must not match dossier on number 31: %+v", result)
	}
}

func TestDuplicateCheck_WithoutStore(t *testing.T) {
	_, err := New(fullDeps()).DuplicateCheck(context.Background(), transport.DuplicateCheckRequest{
		Postcode: "2564RC", HouseNumber: "31",
	})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

// =============================================================================
// Walkability
// =============================================================================

func TestWalkabilityForAddress_PropagatesPending(t *testing.T) {
	deps := fullDeps()
	deps.Walkability = &fakeWalk{err: apperr.Pending("still calculating")}

	_, err := New(deps).WalkabilityForAddress(context.Background(), transport.AddressQuery{
		Postcode: "2564RC", HouseNumber: "31",
	})
	if !apperr.Is(err, apperr.KindPending) {
		t.Fatalf("expected pending, got %v", err)
	}
}

func TestWalkabilityForAddress_Unconfigured(t *testing.T) {
	deps := fullDeps()
	deps.Walkability = nil

	_, err := New(deps).WalkabilityForAddress(context.Background(), transport.AddressQuery{
		Postcode: "2564RC", HouseNumber: "31",
	})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
