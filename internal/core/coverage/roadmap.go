package coverage

import (
	"math"
	"sort"

	"github.com/pzsz/voronoi"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// BuildRoadmap approximates the medial axis of free space: a Voronoi
// diagram seeded by every boundary and obstacle vertex, clipped to
// the boundary, with obstacle-crossing edges pruned and the survivors
// joined into junction-to-junction polylines. Dead-end chains are
// dropped; the roadmap is the junction skeleton only.
//
// An empty result is not fatal: the router can still connect points
// by direct line.
func BuildRoadmap(boundary domain.Polygon, obstacles []domain.Polygon) domain.Roadmap {
	seeds := collectSeeds(boundary, obstacles)
	if len(seeds) < 3 {
		return domain.Roadmap{domain.LineString(boundary.Close())}
	}

	minLon, maxLon := math.Inf(1), math.Inf(-1)
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	for _, p := range boundary.Vertices() {
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
	}
	// Pad the computation box so no site sits exactly on it; the cell
	// polygons are intersected with the boundary right after, so the
	// padding never reaches the roadmap.
	padLon := (maxLon - minLon) * 0.1
	padLat := (maxLat - minLat) * 0.1

	sites := make([]voronoi.Vertex, len(seeds))
	for i, p := range seeds {
		sites[i] = voronoi.Vertex{X: p.Lon, Y: p.Lat}
	}
	bbox := voronoi.NewBBox(minLon-padLon, maxLon+padLon, minLat-padLat, maxLat+padLat)
	diagram := voronoi.ComputeDiagram(sites, bbox, true)
	if diagram == nil || len(diagram.Cells) == 0 {
		return domain.Roadmap{domain.LineString(boundary.Close())}
	}

	segs := extractSegments(diagram, boundary, obstacles)
	return joinSegments(segs)
}

func collectSeeds(boundary domain.Polygon, obstacles []domain.Polygon) []domain.Point {
	seen := make(map[string]bool)
	var out []domain.Point
	add := func(p domain.Point) {
		if k := p.Fingerprint(); !seen[k] {
			seen[k] = true
			out = append(out, p)
		}
	}
	for _, p := range boundary.Vertices() {
		add(p)
	}
	for _, o := range obstacles {
		for _, p := range o.Vertices() {
			add(p)
		}
	}
	return out
}

// roadSeg is one undirected Voronoi edge surviving the pruning.
type roadSeg struct {
	a, b    domain.Point
	keyA    string
	keyB    string
	visited bool
}

func segKey(a, b domain.Point) string {
	ka, kb := a.Fingerprint(), b.Fingerprint()
	if kb < ka {
		ka, kb = kb, ka
	}
	return ka + "|" + kb
}

func extractSegments(diagram *voronoi.Diagram, boundary domain.Polygon, obstacles []domain.Polygon) []*roadSeg {
	seen := make(map[string]bool)
	var segs []*roadSeg

	for _, cell := range diagram.Cells {
		var ring domain.Polygon
		for _, he := range cell.Halfedges {
			sp := he.GetStartpoint()
			ring = append(ring, domain.Point{Lon: sp.X, Lat: sp.Y})
		}
		if len(ring) < 3 {
			continue
		}
		if geospatial.Disjoint(ring.Close(), boundary) {
			continue
		}
		for _, clipped := range geospatial.Intersection(ring.Close(), boundary) {
			v := clipped.Vertices()
			for i := range v {
				a, b := v[i], v[(i+1)%len(v)]
				if a.Equal(b) || !segmentAvoidsObstacles(a, b, obstacles) {
					continue
				}
				key := segKey(a, b)
				if seen[key] {
					continue
				}
				seen[key] = true
				segs = append(segs, &roadSeg{a: a, b: b, keyA: a.Fingerprint(), keyB: b.Fingerprint()})
			}
		}
	}
	return segs
}

// segmentAvoidsObstacles rejects edges that cross or enter any
// obstacle interior.
func segmentAvoidsObstacles(a, b domain.Point, obstacles []domain.Polygon) bool {
	mid := domain.Point{Lon: (a.Lon + b.Lon) / 2, Lat: (a.Lat + b.Lat) / 2}
	for _, o := range obstacles {
		if geospatial.PointInPolygon(a, o) || geospatial.PointInPolygon(b, o) || geospatial.PointInPolygon(mid, o) {
			return false
		}
		if geospatial.SegmentCrossesRing(a, b, o) {
			return false
		}
	}
	return true
}

// joinSegments counts endpoint degrees, takes keys with degree > 2 as
// junctions, and walks from each junction through degree-2 chains,
// emitting one polyline per junction-to-junction run. Every physical
// edge lands in at most one polyline.
func joinSegments(segs []*roadSeg) domain.Roadmap {
	adj := make(map[string][]*roadSeg)
	for _, s := range segs {
		adj[s.keyA] = append(adj[s.keyA], s)
		adj[s.keyB] = append(adj[s.keyB], s)
	}

	var branches []string
	for key, list := range adj {
		if len(list) > 2 {
			branches = append(branches, key)
		}
	}
	// Map iteration order is random; planning must be deterministic.
	sort.Strings(branches)
	isBranch := make(map[string]bool, len(branches))
	for _, k := range branches {
		isBranch[k] = true
	}

	var roadmap domain.Roadmap
	for _, start := range branches {
		for _, s := range adj[start] {
			if s.visited {
				continue
			}
			if line, ok := walkChain(start, s, adj, isBranch); ok {
				roadmap = append(roadmap, line)
			}
		}
	}
	return roadmap
}

// walkChain follows a chain of edges from a junction until it reaches
// another junction (emitted) or a dead end (dropped).
func walkChain(startKey string, first *roadSeg, adj map[string][]*roadSeg, isBranch map[string]bool) (domain.LineString, bool) {
	line := domain.LineString{}
	cur := first
	curKey := startKey
	if cur.keyA == startKey {
		line = append(line, cur.a)
	} else {
		line = append(line, cur.b)
	}

	for {
		cur.visited = true
		var nextPt domain.Point
		var nextKey string
		if cur.keyA == curKey {
			nextPt, nextKey = cur.b, cur.keyB
		} else {
			nextPt, nextKey = cur.a, cur.keyA
		}
		line = append(line, nextPt)

		if isBranch[nextKey] {
			return line, true
		}

		var next *roadSeg
		for _, cand := range adj[nextKey] {
			if !cand.visited {
				next = cand
				break
			}
		}
		if next == nil {
			// Dead end or already-consumed loop: not part of the
			// junction skeleton.
			return nil, false
		}
		cur = next
		curKey = nextKey
	}
}
