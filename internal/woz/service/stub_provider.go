package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"pandoorac_backend/internal/woz/transport"
)

// StubValuationProvider generates synthetic valuation histories. There is no
// public WOZ API with per-object values, so until a real data source is
// wired in, this stand-in produces clearly deterministic placeholder data:
// the same nummeraanduiding always yields the same history.
//
// Values are synthetic and must never be presented as official WOZ values.
type StubValuationProvider struct {
	// Now allows tests to pin the clock. Defaults to time.Now.
	Now func() time.Time
}

const stubHistoryYears = 5

// Valuations returns deterministic synthetic object details and a history
// of yearly valuations ending at the most recent January 1st reference date.
func (p *StubValuationProvider) Valuations(_ context.Context, nummeraanduidingID string) (transport.ObjectDetails, []transport.Valuation, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(nummeraanduidingID))
	seed := h.Sum32()
	base := 150_000 + int(seed%450_000)

	details := transport.ObjectDetails{
		Wozobjectnummer:         fmt.Sprintf("%012d", seed),
		Gemeentecode:            fmt.Sprintf("%04d", seed%2000),
		KadastraleGemeenteCode:  fmt.Sprintf("%04d", (seed>>8)%2000),
		KadastraleSectie:        string(rune('A' + seed%8)),
		KadastraalPerceelnummer: fmt.Sprintf("%d", 1000+(seed>>4)%9000),
	}

	latestYear := now().Year() - 1
	valuations := make([]transport.Valuation, 0, stubHistoryYears)
	for i := 0; i < stubHistoryYears; i++ {
		year := latestYear - i
		// Roughly 3% yearly growth toward the most recent value.
		value := base
		for j := 0; j < i; j++ {
			value = value * 100 / 103
		}
		valuations = append(valuations, transport.Valuation{
			Peildatum:          fmt.Sprintf("%04d-01-01", year),
			VastgesteldeWaarde: value,
		})
	}
	return details, valuations, nil
}
