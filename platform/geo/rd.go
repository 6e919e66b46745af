// Package geo provides coordinate transformations between the Dutch RD
// (Rijksdriehoek, EPSG:28992) grid and WGS84, plus slippy-map tile math.
// This is part of the platform layer and contains no business logic.
//
// The RD to WGS84 conversion uses the well-known polynomial approximation on
// the Bessel ellipsoid with the datum shift folded into the series origin.
// Accuracy is in the order of a meter, sufficient for map display and registry
// cross-referencing but not for legal surveying.
package geo

import "math"

// RD coordinates of the series origin (Onze Lieve Vrouwetoren, Amersfoort)
// and its WGS84 position.
const (
	rdOriginX = 155000.0
	rdOriginY = 463000.0

	wgs84OriginLat = 52.15517440
	wgs84OriginLon = 5.38720621
)

// Valid RD domain. Coordinates outside this envelope are not on the Dutch
// grid and the series diverges quickly.
const (
	rdMinX = -7000.0
	rdMaxX = 300000.0
	rdMinY = 289000.0
	rdMaxY = 629000.0
)

type term struct {
	p, q  int
	coeff float64
}

// Latitude series coefficients (arc seconds per normalized displacement).
var latTerms = []term{
	{0, 1, 3235.65389},
	{2, 0, -32.58297},
	{0, 2, -0.24750},
	{2, 1, -0.84978},
	{0, 3, -0.06550},
	{2, 2, -0.01709},
	{1, 0, -0.00738},
	{4, 0, 0.00530},
	{2, 3, -0.00039},
	{4, 1, 0.00033},
	{1, 1, -0.00012},
}

// Longitude series coefficients (arc seconds per normalized displacement).
var lonTerms = []term{
	{1, 0, 5260.52916},
	{1, 1, 105.94684},
	{1, 2, 2.45656},
	{3, 0, -0.81885},
	{1, 3, 0.05594},
	{3, 1, -0.05607},
	{0, 1, 0.01199},
	{3, 2, -0.00256},
	{1, 4, 0.00128},
	{0, 2, 0.00022},
	{2, 0, -0.00022},
	{5, 0, 0.00026},
}

// RDToWGS84 converts RD grid coordinates to WGS84 latitude/longitude.
// It returns ok=false for non-finite input or coordinates outside the RD
// domain; callers treat geodata as best-effort and should skip such points
// rather than fail.
func RDToWGS84(x, y float64) (lat, lon float64, ok bool) {
	if !isFinite(x) || !isFinite(y) {
		return 0, 0, false
	}
	if x < rdMinX || x > rdMaxX || y < rdMinY || y > rdMaxY {
		return 0, 0, false
	}

	dX := (x - rdOriginX) * 1e-5
	dY := (y - rdOriginY) * 1e-5

	lat = wgs84OriginLat + evalSeries(latTerms, dX, dY)/3600.0
	lon = wgs84OriginLon + evalSeries(lonTerms, dX, dY)/3600.0
	return lat, lon, true
}

func evalSeries(terms []term, dX, dY float64) float64 {
	var sum float64
	for _, t := range terms {
		sum += t.coeff * math.Pow(dX, float64(t.p)) * math.Pow(dY, float64(t.q))
	}
	return sum
}

// TileIndex returns the slippy-map tile that contains the given WGS84
// coordinate at the given zoom level. It returns ok=false for non-finite
// input or latitudes outside the Web Mercator range.
func TileIndex(lat, lon float64, zoom int) (tileX, tileY int, ok bool) {
	if !isFinite(lat) || !isFinite(lon) || zoom < 0 || zoom > 30 {
		return 0, 0, false
	}
	if lat < -85.0511 || lat > 85.0511 {
		return 0, 0, false
	}

	n := float64(int(1) << uint(zoom))
	latRad := lat * math.Pi / 180.0

	x := int(math.Floor((lon + 180.0) / 360.0 * n))
	y := int(math.Floor((1.0 - math.Asinh(math.Tan(latRad))/math.Pi) / 2.0 * n))

	max := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	} else if y > max {
		y = max
	}
	return x, y, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
