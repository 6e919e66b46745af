package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/apperr"
	"pandoorac_backend/platform/logger"
)

func newTestClient(baseURL string) *Client {
	c := New(baseURL, "test-key", logger.New("development"))
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func testAddress(t *testing.T) address.Normalized {
	t.Helper()
	addr, err := address.Normalize("2564 RC", "31", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return addr
}

// newBAGServer serves a minimal register: a search hit pointing at an adres,
// the adres pointing at a verblijfsobject, and the pand it belongs to.
func newBAGServer(t *testing.T, adresHuisnummer int, adresPostcode string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/adressen/zoek":
			fmt.Fprintf(w, `{"_embedded":{"zoekresultaten":[{"identificatie":"A1","_links":{"adres":{"href":"%s/adressen/A1"}}}]}}`, srv.URL)
		case "/adressen/A1":
			fmt.Fprintf(w, `{"postcode":%q,"huisnummer":%d,"huisletter":"","pandIdentificaties":["P1"],"_links":{"adresseerbaarObject":{"href":"%s/verblijfsobjecten/V1"}}}`,
				adresPostcode, adresHuisnummer, srv.URL)
		case "/verblijfsobjecten/V1":
			fmt.Fprint(w, `{"verblijfsobject":{"verblijfsobject":{"identificatie":"V1","oppervlakte":120,"inhoud":380,"gebruiksdoelen":["woonfunctie"],"maaktDeelUitVan":["P1"],"geometrie":{"punt":{"type":"Point","coordinates":[80300.5,454700.2]}}}}}`)
		case "/panden/P1":
			fmt.Fprint(w, `{"pand":{"identificatie":"P1","oorspronkelijkBouwjaar":"1931","geometrie":{"vlak":{"type":"Polygon","coordinates":[[[80298,454698],[80302,454698],[80302,454702],[80298,454702]]]}}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv
}

func TestLookupBuilding(t *testing.T) {
	srv := newBAGServer(t, 31, "2564RC")
	defer srv.Close()

	data, err := newTestClient(srv.URL).LookupBuilding(context.Background(), testAddress(t))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if data.VerblijfsobjectID != "V1" || data.PandID != "P1" {
		t.Fatalf("unexpected identifiers: %+v", data)
	}
	if data.Bouwjaar != 1931 {
		t.Fatalf("bouwjaar = %d, want 1931", data.Bouwjaar)
	}
	if data.Oppervlakte != 120 || data.Inhoud != 380 {
		t.Fatalf("unexpected measurements: %+v", data)
	}
	if len(data.Gebruiksdoelen) != 1 || data.Gebruiksdoelen[0] != "woonfunctie" {
		t.Fatalf("unexpected gebruiksdoelen: %v", data.Gebruiksdoelen)
	}
	if data.Geodata == nil {
		t.Fatal("expected geodata")
	}
	if data.Geodata.RDX != 80300.5 || data.Geodata.RDY != 454700.2 {
		t.Fatalf("expected verblijfsobject point to win, got %+v", data.Geodata)
	}
	if data.Geodata.Latitude < 50 || data.Geodata.Latitude > 54 {
		t.Fatalf("latitude %f outside the Netherlands", data.Geodata.Latitude)
	}
}

func TestLookupBuilding_RejectsPartialHouseNumberMatch(t *testing.T) {
	// The register returns number 314; a lookup for 31 must not accept it
	// even though "31" is a prefix of "314".
	srv := newBAGServer(t, 314, "2564RC")
	defer srv.Close()

	_, err := newTestClient(srv.URL).LookupBuilding(context.Background(), testAddress(t))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupBuilding_RejectsPostcodeMismatch(t *testing.T) {
	srv := newBAGServer(t, 31, "1012AB")
	defer srv.Close()

	_, err := newTestClient(srv.URL).LookupBuilding(context.Background(), testAddress(t))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupBuilding_Unauthorized(t *testing.T) {
	srv := newBAGServer(t, 31, "2564RC")
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.apiKey = "wrong"

	_, err := c.LookupBuilding(context.Background(), testAddress(t))
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLookupBuilding_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).LookupBuilding(context.Background(), testAddress(t))
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestCentroidRD_PolygonAverage(t *testing.T) {
	g := &apiGeometry{
		Type:        "Polygon",
		Coordinates: []byte(`[[[0,0],[10,0],[10,10],[0,10]]]`),
	}
	x, y, ok := g.centroidRD()
	if !ok || x != 5 || y != 5 {
		t.Fatalf("centroid = (%f, %f, %v), want (5, 5, true)", x, y, ok)
	}
}

func TestCentroidRD_Malformed(t *testing.T) {
	if _, _, ok := (*apiGeometry)(nil).centroidRD(); ok {
		t.Fatal("nil geometry must not produce a centroid")
	}
	g := &apiGeometry{Type: "Polygon", Coordinates: []byte(`"garbage"`)}
	if _, _, ok := g.centroidRD(); ok {
		t.Fatal("malformed coordinates must not produce a centroid")
	}
}
