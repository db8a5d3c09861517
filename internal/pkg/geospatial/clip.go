package geospatial

import (
	"math"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// Polygon clipping after Greiner-Hormann: walk both rings, insert
// crossing points into circular lists, mark each crossing entry or
// exit, then trace result rings switching lists at every crossing.
// Only exterior rings are produced; holes cannot arise from the
// simple-polygon inputs this planner feeds in.

type clipNode struct {
	p          domain.Point
	next, prev *clipNode
	crossing   bool
	entry      bool
	visited    bool
	neighbor   *clipNode
	alpha      float64
}

func buildRing(poly domain.Polygon) *clipNode {
	v := poly.Vertices()
	var head, tail *clipNode
	for _, p := range v {
		n := &clipNode{p: p}
		if head == nil {
			head = n
		} else {
			tail.next = n
			n.prev = tail
		}
		tail = n
	}
	tail.next = head
	head.prev = tail
	return head
}

// insertSorted places a crossing node on the edge that starts at
// edgeStart, ordered by its fractional position along the edge.
func insertSorted(edgeStart *clipNode, n *clipNode) {
	at := edgeStart
	for at.next.crossing && at.next.alpha < n.alpha {
		at = at.next
	}
	n.next = at.next
	n.prev = at
	at.next.prev = n
	at.next = n
}

func ringNodes(head *clipNode) []*clipNode {
	var out []*clipNode
	for n := head; ; n = n.next {
		out = append(out, n)
		if n.next == head {
			break
		}
	}
	return out
}

// segmentParams returns the crossing parameters of a-b with c-d, or
// ok=false when parallel or crossing outside the open interval.
func segmentParams(a, b, c, d domain.Point) (t, u float64, at domain.Point, ok bool) {
	rx, ry := b.Lon-a.Lon, b.Lat-a.Lat
	sx, sy := d.Lon-c.Lon, d.Lat-c.Lat
	denom := cross(rx, ry, sx, sy)
	rLen := math.Hypot(rx, ry)
	sLen := math.Hypot(sx, sy)
	if rLen == 0 || sLen == 0 || math.Abs(denom) < angularEps*rLen*sLen {
		return 0, 0, domain.Point{}, false
	}
	qpx, qpy := c.Lon-a.Lon, c.Lat-a.Lat
	t = cross(qpx, qpy, sx, sy) / denom
	u = cross(qpx, qpy, rx, ry) / denom
	if t <= angularEps || t >= 1-angularEps || u <= angularEps || u >= 1-angularEps {
		return 0, 0, domain.Point{}, false
	}
	return t, u, domain.Point{Lon: a.Lon + t*rx, Lat: a.Lat + t*ry}, true
}

// clipRings computes subject AND/MINUS clip. invertSubject selects
// difference; the traversal rules are otherwise identical.
func clipRings(subject, clipPoly domain.Polygon, invertSubject bool) []domain.Polygon {
	if len(subject.Vertices()) < 3 || len(clipPoly.Vertices()) < 3 {
		return nil
	}

	sHead := buildRing(subject)
	cHead := buildRing(clipPoly)

	// Phase 1: find crossings between original edges and insert them
	// into both lists, linked as neighbors.
	crossings := 0
	for _, sn := range ringNodes(sHead) {
		if sn.crossing {
			continue
		}
		sEnd := originalNext(sn)
		for _, cn := range ringNodes(cHead) {
			if cn.crossing {
				continue
			}
			cEnd := originalNext(cn)
			t, u, at, ok := segmentParams(sn.p, sEnd.p, cn.p, cEnd.p)
			if !ok {
				continue
			}
			a := &clipNode{p: at, crossing: true, alpha: t}
			b := &clipNode{p: at, crossing: true, alpha: u}
			a.neighbor = b
			b.neighbor = a
			insertSorted(sn, a)
			insertSorted(cn, b)
			crossings++
		}
	}

	if crossings == 0 {
		return clipNoCrossings(subject, clipPoly, invertSubject)
	}

	// Phase 2: entry/exit flags, alternating from the containment
	// status of each ring's first original vertex.
	markEntries(sHead, clipPoly, invertSubject)
	markEntries(cHead, subject, false)

	// Phase 3: trace result rings.
	var out []domain.Polygon
	for _, start := range ringNodes(sHead) {
		if !start.crossing || start.visited {
			continue
		}
		ring := domain.Polygon{start.p}
		cur := start
		for {
			cur.visited = true
			cur.neighbor.visited = true
			if cur.entry {
				for {
					cur = cur.next
					ring = append(ring, cur.p)
					if cur.crossing {
						break
					}
				}
			} else {
				for {
					cur = cur.prev
					ring = append(ring, cur.p)
					if cur.crossing {
						break
					}
				}
			}
			cur = cur.neighbor
			if cur == start || cur.neighbor == start {
				break
			}
		}
		if len(ring.Vertices()) >= 3 {
			out = append(out, dedupRing(ring).Close())
		}
	}
	return out
}

// originalNext skips crossing nodes to find the end of the original edge.
func originalNext(n *clipNode) *clipNode {
	m := n.next
	for m.crossing {
		m = m.next
	}
	return m
}

func markEntries(head *clipNode, other domain.Polygon, invert bool) {
	entry := !PointInPolygon(head.p, other)
	if invert {
		entry = !entry
	}
	for n := head; ; n = n.next {
		if n.crossing {
			n.entry = entry
			entry = !entry
		}
		if n.next == head {
			break
		}
	}
}

// clipNoCrossings resolves the pure containment cases.
func clipNoCrossings(subject, clipPoly domain.Polygon, invertSubject bool) []domain.Polygon {
	subjectInClip := PointInPolygon(subject.Vertices()[0], clipPoly) && ContainsPolygon(clipPoly, subject)
	if invertSubject {
		// Difference: a swallowed subject vanishes; anything else
		// survives whole (a strictly interior clip would carve a
		// hole, which exterior-ring-only callers never request).
		if subjectInClip {
			return nil
		}
		return []domain.Polygon{subject.Clone().Close()}
	}
	if subjectInClip {
		return []domain.Polygon{subject.Clone().Close()}
	}
	if PointInPolygon(clipPoly.Vertices()[0], subject) && ContainsPolygon(subject, clipPoly) {
		return []domain.Polygon{clipPoly.Clone().Close()}
	}
	return nil
}

func dedupRing(ring domain.Polygon) domain.Polygon {
	var out domain.Polygon
	for _, p := range ring.Vertices() {
		if len(out) == 0 || !out[len(out)-1].Equal(p) {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0].Equal(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// Intersection returns the regions common to subject and clip.
func Intersection(subject, clip domain.Polygon) []domain.Polygon {
	return clipRings(subject, clip, false)
}

// Difference returns subject minus clip, possibly in several pieces.
func Difference(subject, clip domain.Polygon) []domain.Polygon {
	return clipRings(subject, clip, true)
}

// LargestPolygon returns the ring with the greatest area, or nil for
// an empty set.
func LargestPolygon(polys []domain.Polygon) domain.Polygon {
	var best domain.Polygon
	bestArea := -1.0
	for _, p := range polys {
		if a := AreaM2(p); a > bestArea {
			bestArea = a
			best = p
		}
	}
	return best
}
