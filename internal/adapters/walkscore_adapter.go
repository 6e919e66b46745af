package adapters

import (
	"context"

	"pandoorac_backend/internal/geodata/transport"
	wsclient "pandoorac_backend/internal/walkscore/client"
)

// WalkScoreAdapter adapts the WalkScore client to the WalkabilitySource port.
type WalkScoreAdapter struct {
	client *wsclient.Client
}

// NewWalkScoreAdapter creates the adapter.
func NewWalkScoreAdapter(client *wsclient.Client) *WalkScoreAdapter {
	return &WalkScoreAdapter{client: client}
}

// Walkability implements ports.WalkabilitySource.
func (a *WalkScoreAdapter) Walkability(ctx context.Context, addressText string, lat, lon float64) (*transport.WalkabilityScore, error) {
	score, err := a.client.GetScore(ctx, addressText, lat, lon)
	if err != nil {
		return nil, err
	}

	out := &transport.WalkabilityScore{
		WalkScore:   score.WalkScore,
		Category:    score.Category,
		Description: score.Description,
		SnappedLat:  score.SnappedLat,
		SnappedLon:  score.SnappedLon,
	}
	if score.Transit != nil {
		transit := score.Transit.Score
		out.TransitScore = &transit
	}
	if score.Bike != nil {
		bike := score.Bike.Score
		out.BikeScore = &bike
	}
	return out, nil
}
