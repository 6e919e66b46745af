package adapters

import (
	"context"

	"pandoorac_backend/internal/geodata/transport"
	wozservice "pandoorac_backend/internal/woz/service"
	"pandoorac_backend/platform/address"
)

// WOZValuationAdapter adapts the WOZ service to the ValuationSource port.
type WOZValuationAdapter struct {
	service *wozservice.Service
}

// NewWOZValuationAdapter creates the adapter.
func NewWOZValuationAdapter(service *wozservice.Service) *WOZValuationAdapter {
	return &WOZValuationAdapter{service: service}
}

// History implements ports.ValuationSource.
func (a *WOZValuationAdapter) History(ctx context.Context, addr address.Normalized) (*transport.ValuationHistory, error) {
	obj, err := a.service.GetValuations(ctx, addr)
	if err != nil {
		return nil, err
	}

	history := &transport.ValuationHistory{
		NummeraanduidingID:      obj.NummeraanduidingID,
		Adres:                   obj.Adres,
		Wozobjectnummer:         obj.Wozobjectnummer,
		Gemeentecode:            obj.Gemeentecode,
		KadastraleGemeenteCode:  obj.KadastraleGemeenteCode,
		KadastraleSectie:        obj.KadastraleSectie,
		KadastraalPerceelnummer: obj.KadastraalPerceelnummer,
		Valuations:              make([]transport.Valuation, 0, len(obj.Valuations)),
	}
	for _, v := range obj.Valuations {
		history.Valuations = append(history.Valuations, transport.Valuation{
			Peildatum:          v.Peildatum,
			VastgesteldeWaarde: v.VastgesteldeWaarde,
		})
	}
	return history, nil
}
