package coverage

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// graphEdge is one directed entry in the adjacency graph. Each
// physical roadmap segment is inserted twice, once per direction,
// each carrying its own oriented polyline so path reconstruction
// concatenates real geometry instead of chords.
type graphEdge struct {
	to    string
	distM float64
	path  domain.LineString
}

// AdjacencyGraph maps point fingerprints to out-edges.
type AdjacencyGraph map[string][]graphEdge

// BuildAdjacency converts a roadmap into a bidirectional graph keyed
// by endpoint fingerprints.
func BuildAdjacency(roadmap domain.Roadmap) AdjacencyGraph {
	g := make(AdjacencyGraph)
	for _, seg := range roadmap {
		if len(seg) < 2 {
			continue
		}
		a, b := seg[0].Fingerprint(), seg[len(seg)-1].Fingerprint()
		d := geospatial.LengthM(seg)
		g[a] = append(g[a], graphEdge{to: b, distM: d, path: seg.Clone()})
		g[b] = append(g[b], graphEdge{to: a, distM: d, path: seg.Reverse()})
	}
	return g
}

// Router answers clear-path queries against the free space described
// by the working boundary, obstacles, and roadmap.
type Router struct {
	boundary  domain.Polygon
	obstacles []domain.Polygon
	roadmap   domain.Roadmap
}

// NewRouter creates a router over the given free space.
func NewRouter(boundary domain.Polygon, obstacles []domain.Polygon, roadmap domain.Roadmap) *Router {
	return &Router{boundary: boundary, obstacles: obstacles, roadmap: roadmap}
}

// ClearPath returns a polyline from s to e that stays clear of the
// forbidden region: the direct segment when free, otherwise a route
// over the roadmap with both endpoints stitched onto their nearest
// reachable segments.
func (r *Router) ClearPath(s, e domain.Point) (domain.LineString, error) {
	if geospatial.PathClear(s, e, r.boundary, r.obstacles) {
		return domain.LineString{s, e}, nil
	}

	sPt, sIdx, ok := r.stitch(s)
	if !ok {
		return nil, fmt.Errorf("stitch start %s: %w", s.Fingerprint(), domain.ErrNoPath)
	}
	ePt, eIdx, ok := r.stitch(e)
	if !ok {
		return nil, fmt.Errorf("stitch end %s: %w", e.Fingerprint(), domain.ErrNoPath)
	}

	temp := r.temporaryRoadmap(sPt, sIdx, ePt, eIdx)
	temp = append(temp, domain.LineString{s, sPt}, domain.LineString{ePt, e})

	path, err := dijkstra(BuildAdjacency(temp), s.Fingerprint(), e.Fingerprint())
	if err != nil {
		return nil, err
	}
	return path, nil
}

// stitch finds the nearest point on any roadmap segment reachable
// from p by a free straight segment.
func (r *Router) stitch(p domain.Point) (domain.Point, int, bool) {
	best := math.Inf(1)
	var bestPt domain.Point
	bestIdx := -1
	for i, seg := range r.roadmap {
		if len(seg) < 2 {
			continue
		}
		pt, d, _ := geospatial.NearestOnLineString(p, seg)
		if d >= best {
			continue
		}
		if !geospatial.PathClear(p, pt, r.boundary, r.obstacles) {
			continue
		}
		best = d
		bestPt = pt
		bestIdx = i
	}
	return bestPt, bestIdx, bestIdx >= 0
}

// temporaryRoadmap replaces the landing segments with their split
// pieces so the graph gains a node exactly at each stitch point.
func (r *Router) temporaryRoadmap(sPt domain.Point, sIdx int, ePt domain.Point, eIdx int) domain.Roadmap {
	var temp domain.Roadmap
	for i, seg := range r.roadmap {
		if i != sIdx && i != eIdx {
			temp = append(temp, seg)
		}
	}

	appendSplit := func(seg domain.LineString, at domain.Point) []domain.LineString {
		_, _, idx := geospatial.NearestOnLineString(at, seg)
		head, tail := geospatial.SplitLineStringAt(seg, at, idx)
		var out []domain.LineString
		if len(head) >= 2 && !head[0].Equal(head[len(head)-1]) {
			out = append(out, head)
		}
		if len(tail) >= 2 && !tail[0].Equal(tail[len(tail)-1]) {
			out = append(out, tail)
		}
		return out
	}

	if sIdx == eIdx {
		// Both stitches landed on one segment: split it at the first
		// point, then split whichever piece holds the second.
		for _, piece := range appendSplit(r.roadmap[sIdx], sPt) {
			if _, d, _ := geospatial.NearestOnLineString(ePt, piece); d < 0.01 {
				temp = append(temp, appendSplit(piece, ePt)...)
			} else {
				temp = append(temp, piece)
			}
		}
		return temp
	}

	temp = append(temp, appendSplit(r.roadmap[sIdx], sPt)...)
	temp = append(temp, appendSplit(r.roadmap[eIdx], ePt)...)
	return temp
}

// pqItem is a priority-queue entry; ties on distance break by
// insertion order to keep runs deterministic.
type pqItem struct {
	key   string
	dist  float64
	order int
	index int
}

type priorityQueue []*pqItem

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].order < q[j].order
}
func (q priorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

type prevHop struct {
	key  string
	path domain.LineString
}

// dijkstra finds the shortest route between two fingerprints, weights
// being polyline lengths in meters, and reconstructs the full
// geometry from the per-edge polylines remembered at relaxation.
func dijkstra(g AdjacencyGraph, from, to string) (domain.LineString, error) {
	dist := map[string]float64{from: 0}
	prev := map[string]prevHop{}
	done := map[string]bool{}

	q := &priorityQueue{}
	heap.Init(q)
	order := 0
	heap.Push(q, &pqItem{key: from, dist: 0, order: order})

	for q.Len() > 0 {
		cur := heap.Pop(q).(*pqItem)
		if done[cur.key] {
			continue
		}
		done[cur.key] = true
		if cur.key == to {
			break
		}
		for _, e := range g[cur.key] {
			alt := dist[cur.key] + e.distM
			if d, seen := dist[e.to]; !seen || alt < d {
				dist[e.to] = alt
				prev[e.to] = prevHop{key: cur.key, path: e.path}
				order++
				heap.Push(q, &pqItem{key: e.to, dist: alt, order: order})
			}
		}
	}

	if !done[to] {
		return nil, fmt.Errorf("dijkstra %s -> %s: %w", from, to, domain.ErrNoPath)
	}

	var hops []domain.LineString
	for cur := to; cur != from; {
		hop, ok := prev[cur]
		if !ok {
			return nil, fmt.Errorf("dijkstra %s -> %s: %w", from, to, domain.ErrNoPath)
		}
		hops = append(hops, hop.path)
		cur = hop.key
	}

	var out domain.LineString
	for i := len(hops) - 1; i >= 0; i-- {
		for _, p := range hops[i] {
			if len(out) == 0 || !out[len(out)-1].Equal(p) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}
