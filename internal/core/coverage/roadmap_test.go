package coverage

import (
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

func TestJoinSegmentsEmitsJunctionToJunction(t *testing.T) {
	// An H shape: two junctions joined by a crossbar, four dead-end
	// arms. Only the crossbar survives.
	p := func(lon, lat float64) domain.Point { return domain.Point{Lon: lon * deg, Lat: lat * deg} }
	mk := func(a, b domain.Point) *roadSeg {
		return &roadSeg{a: a, b: b, keyA: a.Fingerprint(), keyB: b.Fingerprint()}
	}
	segs := []*roadSeg{
		mk(p(0, 0), p(0, 1)), // left arm down
		mk(p(0, 1), p(0, 2)), // left arm up
		mk(p(2, 0), p(2, 1)), // right arm down
		mk(p(2, 1), p(2, 2)), // right arm up
		mk(p(0, 1), p(2, 1)), // crossbar
	}

	roadmap := joinSegments(segs)
	if len(roadmap) != 1 {
		t.Fatalf("expected only the crossbar, got %d segments", len(roadmap))
	}
	line := roadmap[0]
	if len(line) != 2 {
		t.Fatalf("expected a 2-point polyline, got %d points", len(line))
	}
	ends := map[string]bool{line[0].Fingerprint(): true, line[len(line)-1].Fingerprint(): true}
	if !ends[p(0, 1).Fingerprint()] || !ends[p(2, 1).Fingerprint()] {
		t.Errorf("crossbar endpoints wrong: %v", line)
	}
}

func TestJoinSegmentsChainsThroughDegreeTwo(t *testing.T) {
	// Two junctions joined by a three-edge chain, plus stub arms to
	// raise the junction degrees.
	p := func(lon, lat float64) domain.Point { return domain.Point{Lon: lon * deg, Lat: lat * deg} }
	mk := func(a, b domain.Point) *roadSeg {
		return &roadSeg{a: a, b: b, keyA: a.Fingerprint(), keyB: b.Fingerprint()}
	}
	segs := []*roadSeg{
		// chain A -> m1 -> m2 -> B
		mk(p(0, 0), p(1, 0)),
		mk(p(1, 0), p(2, 0)),
		mk(p(2, 0), p(3, 0)),
		// stubs making A and B degree 3
		mk(p(0, 0), p(0, 1)),
		mk(p(0, 0), p(0, -1)),
		mk(p(3, 0), p(3, 1)),
		mk(p(3, 0), p(3, -1)),
	}

	roadmap := joinSegments(segs)
	if len(roadmap) != 1 {
		t.Fatalf("expected 1 joined polyline, got %d", len(roadmap))
	}
	if len(roadmap[0]) != 4 {
		t.Errorf("expected chain of 4 points, got %d", len(roadmap[0]))
	}
}

func TestBuildRoadmapStaysInsideBoundary(t *testing.T) {
	boundary := squareBoundary(0, 0, 10*deg)
	obstacle := squareBoundary(4*deg, 4*deg, 2*deg)

	roadmap := BuildRoadmap(boundary, []domain.Polygon{obstacle})
	for _, seg := range roadmap {
		for _, p := range seg {
			if !geospatial.PointInPolygon(p, boundary) && geospatial.DistanceToRingM(p, boundary) > 0.05 {
				t.Errorf("roadmap point %+v outside boundary", p)
			}
		}
		for i := 1; i < len(seg); i++ {
			mid := domain.Point{Lon: (seg[i-1].Lon + seg[i].Lon) / 2, Lat: (seg[i-1].Lat + seg[i].Lat) / 2}
			if geospatial.PointInPolygon(mid, obstacle) {
				t.Errorf("roadmap segment through obstacle near %+v", mid)
			}
			if geospatial.SegmentCrossesRing(seg[i-1], seg[i], obstacle) {
				t.Errorf("roadmap segment crosses obstacle ring near %+v", seg[i-1])
			}
		}
	}
}

func TestBuildRoadmapDegenerateSeeds(t *testing.T) {
	// Fewer than three distinct seeds degrades to the boundary outline.
	line := domain.Polygon{
		{Lon: 0, Lat: 0},
		{Lon: deg, Lat: 0},
		{Lon: 0, Lat: 0},
	}
	roadmap := BuildRoadmap(line, nil)
	if len(roadmap) != 1 {
		t.Fatalf("expected the outline fallback, got %d segments", len(roadmap))
	}
}

func TestCollectSeedsDedup(t *testing.T) {
	boundary := squareBoundary(0, 0, deg)
	// Same square again as an obstacle: all vertices collide.
	seeds := collectSeeds(boundary, []domain.Polygon{squareBoundary(0, 0, deg)})
	if len(seeds) != 4 {
		t.Errorf("expected 4 deduplicated seeds, got %d", len(seeds))
	}
}
