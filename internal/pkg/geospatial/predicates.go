package geospatial

import (
	"math"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// angularEps bounds the sine of the angle below which two directions
// are considered parallel, and the parameter slack excluding endpoint
// touches from proper intersections.
const angularEps = 1e-9

// PointInPolygon reports whether p lies inside the ring, by ray
// casting. Points exactly on an edge may land on either side; callers
// needing a margin use ContainsWithMarginM.
func PointInPolygon(p domain.Point, poly domain.Polygon) bool {
	v := poly.Vertices()
	inside := false
	j := len(v) - 1
	for i := 0; i < len(v); i++ {
		a, b := v[i], v[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			xCross := a.Lon + (p.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
			if p.Lon < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// NearestPointOnSegment returns the closest point to p on segment a-b
// and the distance to it in meters.
func NearestPointOnSegment(p, a, b domain.Point) (domain.Point, float64) {
	f := NewFrame(a)
	px, py := f.ToLocal(p)
	bx, by := f.ToLocal(b)

	segLen2 := bx*bx + by*by
	if segLen2 == 0 {
		return a, Haversine(p, a)
	}
	t := (px*bx + py*by) / segLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	nearest := f.FromLocal(t*bx, t*by)
	return nearest, Haversine(p, nearest)
}

// DistanceToRingM returns the minimum distance in meters from p to
// the polygon's ring.
func DistanceToRingM(p domain.Point, poly domain.Polygon) float64 {
	v := poly.Vertices()
	best := math.Inf(1)
	for i := range v {
		_, d := NearestPointOnSegment(p, v[i], v[(i+1)%len(v)])
		if d < best {
			best = d
		}
	}
	return best
}

// ContainsWithMarginM reports whether p lies inside the ring and at
// least marginMeters away from it. A small margin absorbs
// boundary-precision false positives when labelling grid cells.
func ContainsWithMarginM(poly domain.Polygon, p domain.Point, marginMeters float64) bool {
	if !PointInPolygon(p, poly) {
		return false
	}
	if marginMeters <= 0 {
		return true
	}
	return DistanceToRingM(p, poly) > marginMeters
}

func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// ProperIntersection reports whether segments a-b and c-d cross at an
// interior point of both, and returns that point. Shared endpoints
// and mere touches do not count.
func ProperIntersection(a, b, c, d domain.Point) (bool, domain.Point) {
	rx, ry := b.Lon-a.Lon, b.Lat-a.Lat
	sx, sy := d.Lon-c.Lon, d.Lat-c.Lat

	denom := cross(rx, ry, sx, sy)
	rLen := math.Hypot(rx, ry)
	sLen := math.Hypot(sx, sy)
	if rLen == 0 || sLen == 0 || math.Abs(denom) < angularEps*rLen*sLen {
		return false, domain.Point{}
	}

	qpx, qpy := c.Lon-a.Lon, c.Lat-a.Lat
	t := cross(qpx, qpy, sx, sy) / denom
	u := cross(qpx, qpy, rx, ry) / denom
	if t <= angularEps || t >= 1-angularEps || u <= angularEps || u >= 1-angularEps {
		return false, domain.Point{}
	}
	return true, domain.Point{Lon: a.Lon + t*rx, Lat: a.Lat + t*ry}
}

// SegmentCrossesRing reports whether segment a-b properly crosses any
// edge of the ring.
func SegmentCrossesRing(a, b domain.Point, poly domain.Polygon) bool {
	v := poly.Vertices()
	for i := range v {
		if hit, _ := ProperIntersection(a, b, v[i], v[(i+1)%len(v)]); hit {
			return true
		}
	}
	return false
}

// PathClear reports whether the straight segment a-b stays inside the
// boundary and outside every obstacle: the clear-path predicate used
// by the router and the sweep driver.
func PathClear(a, b domain.Point, boundary domain.Polygon, obstacles []domain.Polygon) bool {
	mid := domain.Point{Lon: (a.Lon + b.Lon) / 2, Lat: (a.Lat + b.Lat) / 2}
	if !pointInsideOrNear(a, boundary) || !pointInsideOrNear(b, boundary) || !PointInPolygon(mid, boundary) {
		return false
	}
	if SegmentCrossesRing(a, b, boundary) {
		return false
	}
	for _, o := range obstacles {
		if PointInPolygon(mid, o) || PointInPolygon(a, o) || PointInPolygon(b, o) {
			return false
		}
		if SegmentCrossesRing(a, b, o) {
			return false
		}
	}
	return true
}

// pointInsideOrNear tolerates endpoints sitting on the ring itself,
// which stitched roadmap points routinely do.
func pointInsideOrNear(p domain.Point, poly domain.Polygon) bool {
	if PointInPolygon(p, poly) {
		return true
	}
	return DistanceToRingM(p, poly) < 0.05
}

// Disjoint reports whether two rings share no interior: no edge
// crossings and neither containing a vertex of the other.
func Disjoint(a, b domain.Polygon) bool {
	av, bv := a.Vertices(), b.Vertices()
	for i := range av {
		if PointInPolygon(av[i], b) {
			return false
		}
		for j := range bv {
			if hit, _ := ProperIntersection(av[i], av[(i+1)%len(av)], bv[j], bv[(j+1)%len(bv)]); hit {
				return false
			}
		}
	}
	for j := range bv {
		if PointInPolygon(bv[j], a) {
			return false
		}
	}
	return true
}

// ContainsPolygon reports whether inner lies entirely within outer.
func ContainsPolygon(outer, inner domain.Polygon) bool {
	iv := inner.Vertices()
	if len(iv) == 0 {
		return false
	}
	ov := outer.Vertices()
	for _, p := range iv {
		if !PointInPolygon(p, outer) {
			return false
		}
	}
	for i := range iv {
		for j := range ov {
			if hit, _ := ProperIntersection(iv[i], iv[(i+1)%len(iv)], ov[j], ov[(j+1)%len(ov)]); hit {
				return false
			}
		}
	}
	return true
}

// NearestOnLineString returns the closest point to p on a polyline,
// its distance in meters, and the index of the sub-segment it lies on.
func NearestOnLineString(p domain.Point, ls domain.LineString) (domain.Point, float64, int) {
	best := math.Inf(1)
	var bestPt domain.Point
	bestSeg := 0
	for i := 1; i < len(ls); i++ {
		pt, d := NearestPointOnSegment(p, ls[i-1], ls[i])
		if d < best {
			best = d
			bestPt = pt
			bestSeg = i - 1
		}
	}
	return bestPt, best, bestSeg
}

// SplitLineStringAt splits a polyline at a point lying on sub-segment
// segIdx, returning the two halves. Both halves include the split
// point. A split at an existing vertex yields one degenerate half,
// which callers drop by length.
func SplitLineStringAt(ls domain.LineString, at domain.Point, segIdx int) (domain.LineString, domain.LineString) {
	head := append(domain.LineString{}, ls[:segIdx+1]...)
	if !head[len(head)-1].Equal(at) {
		head = append(head, at)
	}
	tail := domain.LineString{at}
	for _, p := range ls[segIdx+1:] {
		if !p.Equal(at) || len(tail) > 1 {
			tail = append(tail, p)
		}
	}
	return head, tail
}
