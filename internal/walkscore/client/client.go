// Package client provides the HTTP client for the WalkScore API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"pandoorac_backend/internal/walkscore/transport"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

// Provider status codes carried in the response body. The HTTP status is
// 200 even for most failures.
const (
	providerStatusOK          = 1
	providerStatusCalculating = 2
	providerStatusBadCoords   = 30
	providerStatusInternal    = 31
	providerStatusInvalidKey  = 40
	providerStatusQuota       = 41
	providerStatusBlockedIP   = 42
)

const requestInterval = time.Second

// Client is the HTTP client for the WalkScore API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a new WalkScore client.
func New(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		log:        log,
	}
}

// GetScore fetches the walkability score for a position. The address is a
// display hint for the provider; the coordinates are authoritative and
// required, so missing coordinates fail fast without a network call.
func (c *Client) GetScore(ctx context.Context, addressText string, lat, lon float64) (*transport.Score, error) {
	start := time.Now()
	score, err := c.getScore(ctx, addressText, lat, lon)
	c.log.RegistryCall("walkscore", "get_score", float64(time.Since(start).Milliseconds()), err)
	return score, err
}

func (c *Client) getScore(ctx context.Context, addressText string, lat, lon float64) (*transport.Score, error) {
	if lat == 0 || lon == 0 {
		return nil, apperr.Validation("coordinates required for walkability score").WithOp("walkscore.GetScore")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "walkscore request interrupted", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	if addressText == "" {
		addressText = formatCoord(lat) + "," + formatCoord(lon)
	}
	params.Set("address", addressText)
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("transit", "1")
	params.Set("bike", "1")
	params.Set("wsapikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "walkscore unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("walkscore upstream error", "status", resp.StatusCode)
		return nil, apperr.Upstream(fmt.Sprintf("walkscore returned status %d", resp.StatusCode))
	}

	var api apiScore
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "walkscore response malformed", err)
	}

	switch api.Status {
	case providerStatusOK:
		// Success - continue to convert
	case providerStatusCalculating:
		return nil, apperr.Pending("walkscore still calculating for this location")
	case providerStatusBadCoords:
		return nil, apperr.Validation("walkscore rejected the coordinates")
	case providerStatusInvalidKey:
		c.log.Error("walkscore unauthorized", "provider_status", api.Status)
		return nil, apperr.Unauthorized("invalid WalkScore API key")
	case providerStatusQuota:
		c.log.Warn("walkscore quota exceeded")
		return nil, apperr.RateLimited("walkscore daily quota exceeded")
	case providerStatusBlockedIP:
		return nil, apperr.Forbidden("walkscore blocked this IP address")
	case providerStatusInternal:
		return nil, apperr.Upstream("walkscore internal error")
	default:
		return nil, apperr.Upstream(fmt.Sprintf("walkscore status %d", api.Status))
	}

	return api.toTransport(), nil
}

// Category maps a walk score to the provider's descriptive bands.
func Category(score int) string {
	switch {
	case score >= 90:
		return "Walker's Paradise"
	case score >= 70:
		return "Very Walkable"
	case score >= 50:
		return "Somewhat Walkable"
	default:
		return "Car-Dependent"
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// apiScore is the raw response from the WalkScore API.
type apiScore struct {
	Status      int     `json:"status"`
	WalkScore   int     `json:"walkscore"`
	Description string  `json:"description"`
	Updated     string  `json:"updated"`
	WSLink      string  `json:"ws_link"`
	SnappedLat  float64 `json:"snapped_lat"`
	SnappedLon  float64 `json:"snapped_lon"`
	Transit     *struct {
		Score       int    `json:"score"`
		Description string `json:"description"`
		Summary     string `json:"summary"`
	} `json:"transit"`
	Bike *struct {
		Score       int    `json:"score"`
		Description string `json:"description"`
	} `json:"bike"`
}

func (a *apiScore) toTransport() *transport.Score {
	score := &transport.Score{
		WalkScore:   a.WalkScore,
		Description: a.Description,
		Category:    Category(a.WalkScore),
		Updated:     a.Updated,
		WSLink:      a.WSLink,
		SnappedLat:  a.SnappedLat,
		SnappedLon:  a.SnappedLon,
	}
	if a.Transit != nil {
		score.Transit = &transport.SubScore{
			Score:       a.Transit.Score,
			Description: a.Transit.Description,
			Summary:     a.Transit.Summary,
		}
	}
	if a.Bike != nil {
		score.Bike = &transport.SubScore{
			Score:       a.Bike.Score,
			Description: a.Bike.Description,
		}
	}
	return score
}
