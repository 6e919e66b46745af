package service

import (
	"context"
	"testing"
	"time"

	pdoktransport "pandoorac_backend/internal/pdok/transport"
	"pandoorac_backend/internal/woz/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

type fakeResolver struct {
	loc *pdoktransport.Location
	err error
}

func (f *fakeResolver) ResolveAddress(_ context.Context, _ address.Normalized) (*pdoktransport.Location, error) {
	return f.loc, f.err
}

type fakeProvider struct {
	details    transport.ObjectDetails
	valuations []transport.Valuation
}

func (f *fakeProvider) Valuations(_ context.Context, _ string) (transport.ObjectDetails, []transport.Valuation, error) {
	return f.details, f.valuations, nil
}

func testAddr(t *testing.T) address.Normalized {
	t.Helper()
	addr, err := address.Normalize("2564RC", "31", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return addr
}

func TestGetValuations_SortedNewestFirst(t *testing.T) {
	resolver := &fakeResolver{loc: &pdoktransport.Location{
		NummeraanduidingID: "0518200000700031",
		Weergavenaam:       "Pippelingstraat 31",
	}}
	provider := &fakeProvider{
		details: transport.ObjectDetails{Wozobjectnummer: "000012345678", Gemeentecode: "0518"},
		valuations: []transport.Valuation{
			{Peildatum: "2023-01-01", VastgesteldeWaarde: 310_000},
			{Peildatum: "2025-01-01", VastgesteldeWaarde: 342_000},
			{Peildatum: "2024-01-01", VastgesteldeWaarde: 325_000},
		},
	}

	obj, err := New(resolver, provider, logger.New("development")).GetValuations(context.Background(), testAddr(t))
	if err != nil {
		t.Fatalf("get valuations: %v", err)
	}

	if obj.NummeraanduidingID != "0518200000700031" {
		t.Fatalf("unexpected object: %+v", obj)
	}
	if obj.Wozobjectnummer != "000012345678" || obj.Gemeentecode != "0518" {
		t.Fatalf("object details not carried over: %+v", obj)
	}
	want := []string{"2025-01-01", "2024-01-01", "2023-01-01"}
	for i, peildatum := range want {
		if obj.Valuations[i].Peildatum != peildatum {
			t.Fatalf("valuation order %v, want %v", obj.Valuations, want)
		}
	}
}

func TestGetValuations_NoNummeraanduiding(t *testing.T) {
	resolver := &fakeResolver{loc: &pdoktransport.Location{ID: "wpl-1", Type: "woonplaats"}}

	_, err := New(resolver, &fakeProvider{}, logger.New("development")).GetValuations(context.Background(), testAddr(t))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetValuations_ResolverErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{err: apperr.NotFound("no locator match")}

	_, err := New(resolver, &fakeProvider{}, logger.New("development")).GetValuations(context.Background(), testAddr(t))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStubValuationProvider_Deterministic(t *testing.T) {
	provider := &StubValuationProvider{Now: func() time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}}

	firstDetails, first, err := provider.Valuations(context.Background(), "0518200000700031")
	if err != nil {
		t.Fatalf("valuations: %v", err)
	}
	secondDetails, second, err := provider.Valuations(context.Background(), "0518200000700031")
	if err != nil {
		t.Fatalf("valuations: %v", err)
	}

	if firstDetails != secondDetails {
		t.Fatal("stub details must be deterministic per nummeraanduiding")
	}
	if firstDetails.Wozobjectnummer == "" || firstDetails.Gemeentecode == "" ||
		firstDetails.KadastraleSectie == "" || firstDetails.KadastraalPerceelnummer == "" {
		t.Fatalf("incomplete stub details: %+v", firstDetails)
	}

	if len(first) != stubHistoryYears {
		t.Fatalf("expected %d valuations, got %d", stubHistoryYears, len(first))
	}
	if first[0].Peildatum != "2025-01-01" {
		t.Fatalf("latest peildatum = %s, want 2025-01-01", first[0].Peildatum)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("stub must be deterministic per nummeraanduiding")
		}
	}
	// Values grow toward the most recent reference date.
	for i := 1; i < len(first); i++ {
		if first[i-1].VastgesteldeWaarde < first[i].VastgesteldeWaarde {
			t.Fatalf("expected non-decreasing values toward the present: %+v", first)
		}
	}

	_, other, err := provider.Valuations(context.Background(), "0518200000700099")
	if err != nil {
		t.Fatalf("valuations: %v", err)
	}
	if other[0].VastgesteldeWaarde == first[0].VastgesteldeWaarde {
		t.Fatal("different objects should get different synthetic values")
	}
}
