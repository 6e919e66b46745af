package geo

import (
	"math"
	"testing"
)

func TestRDToWGS84_SeriesOrigin(t *testing.T) {
	lat, lon, ok := RDToWGS84(155000, 463000)
	if !ok {
		t.Fatal("expected valid conversion for the series origin")
	}
	if math.Abs(lat-52.1552) > 0.01 {
		t.Fatalf("latitude %f outside tolerance of 52.1552", lat)
	}
	if math.Abs(lon-5.3872) > 0.01 {
		t.Fatalf("longitude %f outside tolerance of 5.3872", lon)
	}
}

func TestRDToWGS84_KnownPoints(t *testing.T) {
	// Reference points well away from the series origin, checked within the
	// approximation's tolerance.
	cases := []struct {
		name     string
		x, y     float64
		lat, lon float64
	}{
		{"westerkerk amsterdam", 120700.72, 487525.50, 52.3745, 4.8835},
		{"groningen centrum", 233883.13, 582065.17, 53.2194, 6.5682},
	}

	for _, tc := range cases {
		lat, lon, ok := RDToWGS84(tc.x, tc.y)
		if !ok {
			t.Fatalf("%s: conversion failed", tc.name)
		}
		if math.Abs(lat-tc.lat) > 0.001 || math.Abs(lon-tc.lon) > 0.001 {
			t.Fatalf("%s: got (%f, %f), want (%f, %f)", tc.name, lat, lon, tc.lat, tc.lon)
		}
	}
}

func TestRDToWGS84_RejectsMalformedInput(t *testing.T) {
	if _, _, ok := RDToWGS84(math.NaN(), 463000); ok {
		t.Fatal("NaN x must be rejected")
	}
	if _, _, ok := RDToWGS84(155000, math.Inf(1)); ok {
		t.Fatal("infinite y must be rejected")
	}
	if _, _, ok := RDToWGS84(2_000_000, 463000); ok {
		t.Fatal("coordinates outside the RD domain must be rejected")
	}
}

func TestTileIndex(t *testing.T) {
	// Equator/Greenwich lands exactly on the tile boundary.
	x, y, ok := TileIndex(0, 0, 1)
	if !ok || x != 1 || y != 1 {
		t.Fatalf("origin at zoom 1: got (%d, %d, %v), want (1, 1, true)", x, y, ok)
	}

	// Amersfoort at zoom 8.
	x, y, ok = TileIndex(52.1552, 5.3872, 8)
	if !ok {
		t.Fatal("expected valid tile index")
	}
	if x != 131 || y != 84 {
		t.Fatalf("got tile (%d, %d), want (131, 84)", x, y)
	}
}

func TestTileIndex_ZoomZero(t *testing.T) {
	x, y, ok := TileIndex(52.0, 5.0, 0)
	if !ok || x != 0 || y != 0 {
		t.Fatalf("zoom 0 must map everything to tile (0, 0), got (%d, %d, %v)", x, y, ok)
	}
}

func TestTileIndex_RejectsMalformedInput(t *testing.T) {
	if _, _, ok := TileIndex(math.NaN(), 5.0, 10); ok {
		t.Fatal("NaN latitude must be rejected")
	}
	if _, _, ok := TileIndex(89.0, 5.0, 10); ok {
		t.Fatal("latitude outside Web Mercator range must be rejected")
	}
}
