package http

import (
	"github.com/terralawn/mowplan/internal/core/domain"
)

// GeoJSON encoding of plan results, for map frontends. Coordinates
// follow the GeoJSON convention: [lon, lat].

func coords(pts []domain.Point) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = []float64{p.Lon, p.Lat}
	}
	return out
}

func polygonFeature(p domain.Polygon, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "Feature",
		"properties": props,
		"geometry": map[string]any{
			"type":        "Polygon",
			"coordinates": [][][]float64{coords(p.Close())},
		},
	}
}

func lineFeature(ls domain.LineString, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "Feature",
		"properties": props,
		"geometry": map[string]any{
			"type":        "LineString",
			"coordinates": coords(ls),
		},
	}
}

// PlanFeatureCollection flattens a plan result into one GeoJSON
// FeatureCollection: boundary, obstacles, hull, mbb, roadmap, mow
// path, and markers, each tagged with a "layer" property.
func PlanFeatureCollection(r *domain.PlanResult) map[string]any {
	var features []map[string]any

	features = append(features, polygonFeature(r.WorkingBoundary, map[string]any{"layer": "boundary"}))
	for i, o := range r.WorkingObstacles {
		features = append(features, polygonFeature(o, map[string]any{"layer": "obstacle", "index": i}))
	}
	features = append(features, polygonFeature(r.Hull, map[string]any{"layer": "hull"}))
	features = append(features, polygonFeature(r.MBB, map[string]any{"layer": "mbb"}))
	for i, seg := range r.Roadmap {
		features = append(features, lineFeature(seg, map[string]any{"layer": "roadmap", "index": i}))
	}
	if len(r.MowPath) > 0 {
		features = append(features, lineFeature(r.MowPath, map[string]any{
			"layer":              "mow_path",
			"coverage_fraction":  r.CoverageFraction,
			"travel_heading_deg": r.TravelHeadingDeg,
		}))
	}
	for _, m := range r.Markers {
		features = append(features, lineFeature(m.Geometry, map[string]any{
			"layer": "marker",
			"kind":  string(m.Kind),
		}))
	}

	return map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	}
}
