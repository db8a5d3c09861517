package http

import (
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
)

func TestPlanFeatureCollection(t *testing.T) {
	ring := domain.Polygon{
		{Lon: 0, Lat: 0},
		{Lon: 1, Lat: 0},
		{Lon: 1, Lat: 1},
		{Lon: 0, Lat: 1},
		{Lon: 0, Lat: 0},
	}
	result := &domain.PlanResult{
		WorkingBoundary:  ring,
		WorkingObstacles: []domain.Polygon{ring},
		Hull:             ring,
		MBB:              ring,
		Roadmap:          domain.Roadmap{{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}},
		MowPath:          domain.LineString{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}},
		Markers: []domain.Marker{
			{Kind: domain.MarkerStart, Geometry: domain.LineString{{Lon: 0, Lat: 0}}},
		},
		CoverageFraction: 1,
	}

	fc := PlanFeatureCollection(result)
	if fc["type"] != "FeatureCollection" {
		t.Fatalf("expected FeatureCollection, got %v", fc["type"])
	}

	features := fc["features"].([]map[string]any)
	layers := map[string]int{}
	for _, f := range features {
		props := f["properties"].(map[string]any)
		layers[props["layer"].(string)]++
	}

	for _, want := range []string{"boundary", "obstacle", "hull", "mbb", "roadmap", "mow_path", "marker"} {
		if layers[want] == 0 {
			t.Errorf("missing layer %q in feature collection", want)
		}
	}

	// GeoJSON wants [lon, lat] pairs.
	boundaryGeom := features[0]["geometry"].(map[string]any)
	coords := boundaryGeom["coordinates"].([][][]float64)
	if coords[0][1][0] != 1 || coords[0][1][1] != 0 {
		t.Errorf("coordinate order must be lon,lat: %v", coords[0][1])
	}
}
