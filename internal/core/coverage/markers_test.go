package coverage

import (
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

func TestBuildMarkersStartEnd(t *testing.T) {
	path := domain.LineString{
		{Lon: 0, Lat: 0},
		{Lon: deg, Lat: 0},
		{Lon: deg, Lat: deg},
	}
	markers := BuildMarkers(path, 0.25)

	var start, end, arrows int
	for _, m := range markers {
		switch m.Kind {
		case domain.MarkerStart:
			start++
			if d := geospatial.Haversine(m.Geometry[0], path[0]); d > 0.1 {
				t.Errorf("start circle %f m from first vertex", d)
			}
		case domain.MarkerEnd:
			end++
		case domain.MarkerArrow:
			arrows++
		}
	}
	if start != 1 || end != 1 {
		t.Errorf("expected one start and one end marker, got %d/%d", start, end)
	}
	// Hops of ~1.1 m exceed 4 lane widths (1 m): both emit arrows.
	if arrows != 2 {
		t.Errorf("expected 2 arrows, got %d", arrows)
	}
}

func TestBuildMarkersNoArrowsOnShortHops(t *testing.T) {
	path := domain.LineString{
		{Lon: 0, Lat: 0},
		{Lon: deg / 2, Lat: 0},
	}
	for _, m := range BuildMarkers(path, 0.25) {
		if m.Kind == domain.MarkerArrow {
			t.Error("a ~0.5 m hop is under the 1 m arrow threshold")
		}
	}
}

func TestBuildMarkersEmptyPath(t *testing.T) {
	if markers := BuildMarkers(domain.LineString{{Lon: 0, Lat: 0}}, 0.25); markers != nil {
		t.Errorf("single-vertex path has no markers, got %d", len(markers))
	}
}
