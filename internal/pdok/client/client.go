// Package client provides the HTTP client for the public PDOK services:
// locatieserver, 3D basisvoorziening, BRT top10nl, the BRK kadastrale
// kaart and the terugmeldingen API. All of them share one request budget.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pandoorac_backend/internal/pdok/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

const (
	locatorBaseURL = "https://api.pdok.nl/bzk/locatieserver/search/v3_1"
	threeDBaseURL  = "https://api.pdok.nl/kadaster/3d-basisvoorziening/ogc/v1"
	brtBaseURL     = "https://api.pdok.nl/brt/top10nl/ogc/v1"
	brkBaseURL     = "https://api.pdok.nl/kadaster/kadastralekaart/ogc/v1"
	meldingBaseURL = "https://api.pdok.nl/bzk/terugmeldingen/v1"

	// PDOK asks fair-use clients to stay around one request per second.
	requestInterval = time.Second

	// Bounding box half-widths in degrees: tight around the building for
	// the height model, a few hundred meters for the surroundings scan.
	threeDBBoxMargin      = 0.001
	topographicBBoxMargin = 0.01
)

// Client is the HTTP client for the PDOK services.
type Client struct {
	httpClient *http.Client
	// Base URLs are exported so tests can point the client at a stub server.
	LocatorURL string
	ThreeDURL  string
	BRTURL     string
	BRKURL     string
	MeldingURL string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a new PDOK client. The services are public and need no key.
func New(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		LocatorURL: locatorBaseURL,
		ThreeDURL:  threeDBaseURL,
		BRTURL:     brtBaseURL,
		BRKURL:     brkBaseURL,
		MeldingURL: meldingBaseURL,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		log:        log,
	}
}

// ResolveAddress resolves a normalized address through the locatieserver's
// suggest and lookup endpoints. Used as fallback when the BAG register is
// unavailable or unconfigured.
func (c *Client) ResolveAddress(ctx context.Context, addr address.Normalized) (*transport.Location, error) {
	start := time.Now()
	loc, err := c.resolveAddress(ctx, addr)
	c.log.RegistryCall("pdok", "resolve_address", float64(time.Since(start).Milliseconds()), err)
	return loc, err
}

func (c *Client) resolveAddress(ctx context.Context, addr address.Normalized) (*transport.Location, error) {
	params := url.Values{}
	params.Set("q", addr.SearchTerm())
	params.Set("rows", "5")

	var suggest apiLocatorResponse
	if err := c.get(ctx, c.LocatorURL+"/suggest?"+params.Encode(), &suggest); err != nil {
		return nil, err
	}
	if len(suggest.Response.Docs) == 0 {
		return nil, apperr.NotFound("no locator match for address").WithOp("pdok.ResolveAddress")
	}

	lookupParams := url.Values{}
	lookupParams.Set("id", suggest.Response.Docs[0].ID)

	var lookup apiLocatorResponse
	if err := c.get(ctx, c.LocatorURL+"/lookup?"+lookupParams.Encode(), &lookup); err != nil {
		return nil, err
	}
	if len(lookup.Response.Docs) == 0 {
		return nil, apperr.NotFound("locator lookup returned no document").WithOp("pdok.ResolveAddress")
	}

	doc := lookup.Response.Docs[0]
	lon, lat, ok := parsePointWKT(doc.CentroideLL)
	if !ok {
		return nil, apperr.Upstream("locator centroid malformed").WithOp("pdok.ResolveAddress")
	}

	loc := &transport.Location{
		ID:                 doc.ID,
		Weergavenaam:       doc.Weergavenaam,
		Type:               doc.Type,
		NummeraanduidingID: doc.Nummeraanduiding,
		Latitude:           lat,
		Longitude:          lon,
	}
	if x, y, ok := parsePointWKT(doc.CentroideRD); ok {
		loc.RDX = x
		loc.RDY = y
	}
	return loc, nil
}

// ThreeDBuilding fetches the height model attributes of the building at the
// given position. Returns nil without error when no model covers it.
func (c *Client) ThreeDBuilding(ctx context.Context, lat, lon float64) (*transport.ThreeDBuilding, error) {
	start := time.Now()
	building, err := c.threeDBuilding(ctx, lat, lon)
	c.log.RegistryCall("pdok", "3d_building", float64(time.Since(start).Milliseconds()), err)
	return building, err
}

func (c *Client) threeDBuilding(ctx context.Context, lat, lon float64) (*transport.ThreeDBuilding, error) {
	params := url.Values{}
	params.Set("bbox", bbox(lat, lon, threeDBBoxMargin))
	params.Set("limit", "1")
	params.Set("f", "json")

	var features apiFeatureCollection
	if err := c.get(ctx, c.ThreeDURL+"/collections/gebouw/items?"+params.Encode(), &features); err != nil {
		return nil, err
	}
	if len(features.Features) == 0 {
		return nil, nil
	}

	props := features.Features[0].Properties
	return &transport.ThreeDBuilding{
		Hoogte:             props.floats("hoogte", "b3_h_max"),
		Dakhoogte:          props.floats("dakhoogte", "dak_hoogte"),
		Maaiveldhoogte:     props.floats("maaiveldhoogte", "b3_h_maaiveld"),
		Gebouwvolume:       props.floats("gebouwvolume", "volume"),
		Daktype:            props.strings("daktype", "b3_dak_type"),
		Model3DBeschikbaar: true,
	}, nil
}

// TopographicFeatures scans the surroundings of a position in the BRT
// top10nl and classifies every feature.
func (c *Client) TopographicFeatures(ctx context.Context, lat, lon float64) ([]transport.TopographicFeature, error) {
	start := time.Now()
	feats, err := c.topographicFeatures(ctx, lat, lon)
	c.log.RegistryCall("pdok", "topographic_features", float64(time.Since(start).Milliseconds()), err)
	return feats, err
}

func (c *Client) topographicFeatures(ctx context.Context, lat, lon float64) ([]transport.TopographicFeature, error) {
	params := url.Values{}
	params.Set("bbox", bbox(lat, lon, topographicBBoxMargin))
	params.Set("limit", "50")
	params.Set("f", "json")

	var features apiFeatureCollection
	if err := c.get(ctx, c.BRTURL+"/collections/gebouw/items?"+params.Encode(), &features); err != nil {
		return nil, err
	}

	out := make([]transport.TopographicFeature, 0, len(features.Features))
	for _, f := range features.Features {
		sourceType := f.Properties.strings("type", "typegebouw")
		out = append(out, transport.TopographicFeature{
			SourceType: sourceType,
			Category:   Classify(sourceType),
		})
	}
	return out, nil
}

// Parcels fetches the cadastral parcels overlapping the position.
func (c *Client) Parcels(ctx context.Context, lat, lon float64) ([]transport.Parcel, error) {
	start := time.Now()
	parcels, err := c.parcels(ctx, lat, lon)
	c.log.RegistryCall("pdok", "parcels", float64(time.Since(start).Milliseconds()), err)
	return parcels, err
}

func (c *Client) parcels(ctx context.Context, lat, lon float64) ([]transport.Parcel, error) {
	params := url.Values{}
	params.Set("bbox", bbox(lat, lon, threeDBBoxMargin))
	params.Set("limit", "10")
	params.Set("f", "json")

	var features apiFeatureCollection
	if err := c.get(ctx, c.BRKURL+"/collections/perceel/items?"+params.Encode(), &features); err != nil {
		return nil, err
	}

	parcels := make([]transport.Parcel, 0, len(features.Features))
	for _, f := range features.Features {
		props := f.Properties
		parcels = append(parcels, transport.Parcel{
			LokaalID:           props.strings("identificatie_lokaal_id"),
			KadastraleGemeente: props.strings("kadastrale_gemeente_waarde"),
			Sectie:             props.strings("sectie"),
			Perceelnummer:      int(props.floats("perceelnummer")),
			KadastraleGrootte:  props.floats("kadastrale_grootte_waarde"),
			Gebruik:            props.strings("gebruik", "gebruiksdoel"),
			SoortEigenaar:      props.strings("soort_eigenaar", "soort_eigenaar_waarde"),
			Status:             props.strings("status_historie_waarde"),
		})
	}
	return parcels, nil
}

// Terugmeldingen fetches the correction reports filed against a register
// object, in the order the API returns them.
func (c *Client) Terugmeldingen(ctx context.Context, objectID string) ([]transport.Terugmelding, error) {
	start := time.Now()
	meldingen, err := c.terugmeldingen(ctx, objectID)
	c.log.RegistryCall("pdok", "terugmeldingen", float64(time.Since(start).Milliseconds()), err)
	return meldingen, err
}

func (c *Client) terugmeldingen(ctx context.Context, objectID string) ([]transport.Terugmelding, error) {
	params := url.Values{}
	params.Set("identificatie", objectID)

	var resp apiTerugmeldingenResponse
	if err := c.get(ctx, c.MeldingURL+"/terugmeldingen?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	out := make([]transport.Terugmelding, 0, len(resp.Terugmeldingen))
	for _, m := range resp.Terugmeldingen {
		out = append(out, transport.Terugmelding{
			DatumTijdRegistratie: m.DatumTijdRegistratie,
			Status:               m.Status,
			Omschrijving:         m.Omschrijving,
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "pdok request interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "pdok unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusNotFound:
		return apperr.NotFound("pdok resource not found")
	case http.StatusTooManyRequests:
		c.log.Warn("pdok rate limited", "url", reqURL)
		return apperr.RateLimited("pdok request budget exhausted")
	default:
		c.log.Error("pdok upstream error", "status", resp.StatusCode, "url", reqURL)
		return apperr.Upstream(fmt.Sprintf("pdok returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "pdok response malformed", err)
	}
	return nil
}

// Classify maps a BRT feature type to a coarse category.
func Classify(sourceType string) string {
	t := strings.ToLower(sourceType)
	switch {
	case t == "":
		return transport.CategoryOther
	case strings.Contains(t, "gebouw") || strings.Contains(t, "huis") || strings.Contains(t, "kas"):
		return transport.CategoryBuilding
	case strings.Contains(t, "weg") || strings.Contains(t, "spoor"):
		return transport.CategoryInfrastructure
	case strings.Contains(t, "water") || strings.Contains(t, "meer") || strings.Contains(t, "rivier"):
		return transport.CategoryWater
	default:
		return transport.CategoryOther
	}
}

// bbox builds a lon/lat bounding box string around a point.
func bbox(lat, lon, margin float64) string {
	return fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(lon-margin), formatCoord(lat-margin),
		formatCoord(lon+margin), formatCoord(lat+margin))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// parsePointWKT parses a "POINT(a b)" string into its two coordinates.
func parsePointWKT(wkt string) (float64, float64, bool) {
	s := strings.TrimSpace(wkt)
	if !strings.HasPrefix(s, "POINT(") || !strings.HasSuffix(s, ")") {
		return 0, 0, false
	}
	fields := strings.Fields(s[len("POINT(") : len(s)-1])
	if len(fields) != 2 {
		return 0, 0, false
	}
	a, errA := strconv.ParseFloat(fields[0], 64)
	b, errB := strconv.ParseFloat(fields[1], 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}

// =============================================================================
// Raw API response types
// =============================================================================

type apiLocatorResponse struct {
	Response struct {
		Docs []apiLocatorDoc `json:"docs"`
	} `json:"response"`
}

type apiLocatorDoc struct {
	ID               string `json:"id"`
	Weergavenaam     string `json:"weergavenaam"`
	Type             string `json:"type"`
	Nummeraanduiding string `json:"nummeraanduiding_id"`
	CentroideLL      string `json:"centroide_ll"`
	CentroideRD      string `json:"centroide_rd"`
}

type apiTerugmeldingenResponse struct {
	Terugmeldingen []struct {
		DatumTijdRegistratie string `json:"datumTijdRegistratie"`
		Status               string `json:"status"`
		Omschrijving         string `json:"omschrijving"`
	} `json:"terugmeldingen"`
}

type apiFeatureCollection struct {
	Features []apiFeature `json:"features"`
}

type apiFeature struct {
	Properties apiProperties `json:"properties"`
}

// apiProperties keeps the raw property bag: the OGC collections expose
// slightly different key sets per dataset version.
type apiProperties map[string]json.RawMessage

func (p apiProperties) floats(keys ...string) float64 {
	for _, key := range keys {
		raw, ok := p[key]
		if !ok {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.ParseFloat(s, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func (p apiProperties) strings(keys ...string) string {
	for _, key := range keys {
		raw, ok := p[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}
