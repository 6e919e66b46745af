// Package client provides the HTTP client for the Kadaster BAG
// Individuele Bevragingen API.
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

	"pandoorac_backend/internal/bag/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/geo"
	"pandoorac_backend/platform/logger"
)

// The BAG API enforces a per-key request budget; one request per 500ms
// keeps a full two-step lookup comfortably inside it.
const requestInterval = 500 * time.Millisecond

// Client is the HTTP client for the BAG API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a new BAG API client. Credentials are injected here, never
// read from the environment at call time.
func New(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		log:        log,
	}
}

// LookupBuilding resolves a normalized address to building data. It searches
// the address register, follows the matched address to its verblijfsobject
// and finally fetches the pand the object belongs to.
func (c *Client) LookupBuilding(ctx context.Context, addr address.Normalized) (*transport.BuildingData, error) {
	start := time.Now()
	result, err := c.lookupBuilding(ctx, addr)
	c.log.RegistryCall("bag", "lookup_building", float64(time.Since(start).Milliseconds()), err)
	return result, err
}

func (c *Client) lookupBuilding(ctx context.Context, addr address.Normalized) (*transport.BuildingData, error) {
	adres, err := c.findAdres(ctx, addr)
	if err != nil {
		return nil, err
	}

	var object apiObjectEnvelope
	objectURL := adres.Links.AdresseerbaarObject.Href
	if objectURL == "" {
		return nil, apperr.NotFound("address has no adresseerbaar object").WithOp("bag.LookupBuilding")
	}
	if err := c.get(ctx, objectURL, &object); err != nil {
		return nil, err
	}

	vbo := object.verblijfsobject()
	data := &transport.BuildingData{
		VerblijfsobjectID: vbo.Identificatie,
		Oppervlakte:       vbo.Oppervlakte,
		Inhoud:            vbo.Inhoud,
		Gebruiksdoelen:    vbo.Gebruiksdoelen,
	}

	pandID := firstNonEmpty(vbo.MaaktDeelUitVan)
	if pandID == "" {
		pandID = firstNonEmpty(adres.PandIdentificaties)
	}
	if pandID != "" {
		data.PandID = pandID
		pand, err := c.getPand(ctx, pandID)
		if err != nil {
			// The verblijfsobject answer is still useful on its own.
			c.log.Warn("bag pand fetch failed", "pand_id", pandID, "error", err)
		} else {
			data.Bouwjaar = pand.bouwjaar()
			data.Hoogte = pand.Hoogte
			data.AantalBouwlagen = pand.AantalBouwlagen
			data.Geodata = geodataFromGeometry(pand.Geometrie)
		}
	}

	// The verblijfsobject point beats the pand polygon centroid.
	if g := geodataFromGeometry(vbo.Geometrie); g != nil {
		data.Geodata = g
	}

	return data, nil
}

// findAdres searches the register and returns the first hit whose postcode
// and house number genuinely match the requested address. House numbers are
// compared as parsed integers so that "31" never matches "131" or "314".
func (c *Client) findAdres(ctx context.Context, addr address.Normalized) (*apiAdres, error) {
	params := url.Values{}
	params.Set("zoek", addr.SearchTerm())

	var search apiSearchResponse
	if err := c.get(ctx, c.baseURL+"/adressen/zoek?"+params.Encode(), &search); err != nil {
		return nil, err
	}

	for _, hit := range search.Embedded.Zoekresultaten {
		href := hit.Links.Adres.Href
		if href == "" {
			continue
		}

		var adres apiAdres
		if err := c.get(ctx, href, &adres); err != nil {
			c.log.Warn("bag adres fetch failed", "url", href, "error", err)
			continue
		}

		if !strings.EqualFold(adres.Postcode, addr.Postcode) {
			continue
		}
		if !address.SameHouseNumber(strconv.Itoa(adres.Huisnummer), addr.HouseNumber) {
			continue
		}
		if addr.HouseLetter != "" && !strings.EqualFold(adres.Huisletter, addr.HouseLetter) {
			continue
		}

		return &adres, nil
	}

	return nil, apperr.NotFound("no matching address in BAG").WithOp("bag.findAdres")
}

func (c *Client) getPand(ctx context.Context, pandID string) (*apiPand, error) {
	var envelope apiPandEnvelope
	reqURL := c.baseURL + "/panden/" + url.PathEscape(pandID)
	if err := c.get(ctx, reqURL, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Pand, nil
}

func (c *Client) get(ctx context.Context, reqURL string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "bag request interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/hal+json")
	req.Header.Set("Accept-Crs", "epsg:28992")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "bag unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusUnauthorized, http.StatusForbidden:
		c.log.Error("bag unauthorized", "status", resp.StatusCode)
		return apperr.Unauthorized("invalid BAG API key")
	case http.StatusNotFound:
		return apperr.NotFound("bag resource not found")
	case http.StatusTooManyRequests:
		c.log.Warn("bag rate limited", "url", reqURL)
		return apperr.RateLimited("bag request budget exhausted")
	default:
		c.log.Error("bag upstream error", "status", resp.StatusCode, "url", reqURL)
		return apperr.Upstream(fmt.Sprintf("bag returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "bag response malformed", err)
	}

	return nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// geodataFromGeometry extracts an RD centroid from a geometry and converts
// it to WGS84. Returns nil when the geometry is absent or malformed.
func geodataFromGeometry(g *apiGeometry) *transport.Geodata {
	x, y, ok := g.centroidRD()
	if !ok {
		return nil
	}
	lat, lon, ok := geo.RDToWGS84(x, y)
	if !ok {
		return nil
	}
	return &transport.Geodata{Latitude: lat, Longitude: lon, RDX: x, RDY: y}
}

// =============================================================================
// Raw API response types
// =============================================================================

type apiLink struct {
	Href string `json:"href"`
}

type apiSearchResponse struct {
	Embedded struct {
		Zoekresultaten []apiZoekresultaat `json:"zoekresultaten"`
	} `json:"_embedded"`
}

type apiZoekresultaat struct {
	Identificatie string `json:"identificatie"`
	Links         struct {
		Adres apiLink `json:"adres"`
	} `json:"_links"`
}

type apiAdres struct {
	Postcode           string   `json:"postcode"`
	Huisnummer         int      `json:"huisnummer"`
	Huisletter         string   `json:"huisletter"`
	Nummeraanduiding   string   `json:"nummeraanduidingIdentificatie"`
	PandIdentificaties []string `json:"pandIdentificaties"`
	Links              struct {
		AdresseerbaarObject apiLink `json:"adresseerbaarObject"`
	} `json:"_links"`
}

// apiObjectEnvelope unwraps the doubly nested verblijfsobject answer.
type apiObjectEnvelope struct {
	Verblijfsobject struct {
		Verblijfsobject apiVerblijfsobject `json:"verblijfsobject"`
	} `json:"verblijfsobject"`
}

func (e *apiObjectEnvelope) verblijfsobject() apiVerblijfsobject {
	return e.Verblijfsobject.Verblijfsobject
}

type apiVerblijfsobject struct {
	Identificatie   string       `json:"identificatie"`
	Oppervlakte     float64      `json:"oppervlakte"`
	Inhoud          float64      `json:"inhoud"`
	Gebruiksdoelen  []string     `json:"gebruiksdoelen"`
	MaaktDeelUitVan []string     `json:"maaktDeelUitVan"`
	Geometrie       *apiGeometry `json:"geometrie"`
}

type apiPandEnvelope struct {
	Pand apiPand `json:"pand"`
}

type apiPand struct {
	Identificatie          string       `json:"identificatie"`
	OorspronkelijkBouwjaar string       `json:"oorspronkelijkBouwjaar"`
	Hoogte                 float64      `json:"hoogte"`
	AantalBouwlagen        int          `json:"aantalBouwlagen"`
	Geometrie              *apiGeometry `json:"geometrie"`
}

func (p *apiPand) bouwjaar() int {
	year, err := strconv.Atoi(strings.TrimSpace(p.OorspronkelijkBouwjaar))
	if err != nil {
		return 0
	}
	return year
}

// apiGeometry covers both the wrapped form ({"punt": {...}} / {"vlak": {...}})
// and the plain GeoJSON form the API serves depending on the endpoint.
type apiGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Punt        *apiGeometry    `json:"punt"`
	Vlak        *apiGeometry    `json:"vlak"`
}

// centroidRD returns the RD coordinates of the geometry. For polygons the
// centroid is approximated by averaging the outer ring's vertices, which is
// accurate enough for address level positioning.
func (g *apiGeometry) centroidRD() (float64, float64, bool) {
	if g == nil {
		return 0, 0, false
	}
	if g.Punt != nil {
		return g.Punt.centroidRD()
	}
	if g.Vlak != nil {
		return g.Vlak.centroidRD()
	}

	switch strings.ToLower(g.Type) {
	case "point", "punt":
		var coords []float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
			return 0, 0, false
		}
		return coords[0], coords[1], true
	case "polygon", "vlak":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 || len(rings[0]) == 0 {
			return 0, 0, false
		}
		return ringCentroid(rings[0])
	case "multipolygon":
		var polygons [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polygons); err != nil || len(polygons) == 0 || len(polygons[0]) == 0 {
			return 0, 0, false
		}
		return ringCentroid(polygons[0][0])
	}

	return 0, 0, false
}

func ringCentroid(ring [][]float64) (float64, float64, bool) {
	var sumX, sumY float64
	count := 0
	for _, vertex := range ring {
		if len(vertex) < 2 {
			continue
		}
		sumX += vertex[0]
		sumY += vertex[1]
		count++
	}
	if count == 0 {
		return 0, 0, false
	}
	return sumX / float64(count), sumY / float64(count), true
}
