package coverage

import (
	"math"
	"sort"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// ConvexHull computes the convex hull of the polygon's vertices by
// Graham scan and returns it as a closed counter-clockwise ring.
func ConvexHull(poly domain.Polygon) (domain.Polygon, error) {
	seen := make(map[string]bool)
	var pts []domain.Point
	for _, p := range poly.Vertices() {
		if k := p.Fingerprint(); !seen[k] {
			seen[k] = true
			pts = append(pts, p)
		}
	}
	if len(pts) < 3 {
		return nil, domain.ErrDegenerateHull
	}

	// Pivot: lowest latitude, then lowest longitude.
	pivot := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Lat < pts[pivot].Lat ||
			(pts[i].Lat == pts[pivot].Lat && pts[i].Lon < pts[pivot].Lon) {
			pivot = i
		}
	}
	pts[0], pts[pivot] = pts[pivot], pts[0]
	p0 := pts[0]

	rest := pts[1:]
	sort.Slice(rest, func(i, j int) bool {
		ai := math.Atan2(rest[i].Lat-p0.Lat, rest[i].Lon-p0.Lon)
		aj := math.Atan2(rest[j].Lat-p0.Lat, rest[j].Lon-p0.Lon)
		if ai != aj {
			return ai < aj
		}
		di := math.Hypot(rest[i].Lon-p0.Lon, rest[i].Lat-p0.Lat)
		dj := math.Hypot(rest[j].Lon-p0.Lon, rest[j].Lat-p0.Lat)
		return di < dj
	})

	hull := []domain.Point{p0, rest[0]}
	for i := 1; i < len(rest); i++ {
		for len(hull) > 1 && turn(hull[len(hull)-2], hull[len(hull)-1], rest[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, rest[i])
	}
	if len(hull) < 3 {
		return nil, domain.ErrDegenerateHull
	}
	return domain.Polygon(hull).Close(), nil
}

func turn(a, b, c domain.Point) float64 {
	return (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
}

// MinimumBoundingBox finds the smallest-area rotated rectangle
// enclosing the hull by rotating calipers: only rectangles parallel
// to a hull edge need be tried. The returned ring is closed, with
// the side v0->v1 carrying the box's orientation bearing.
//
// A non-zero orientation offset rebuilds the box from the bearing of
// the last hull edge considered plus the offset, not the winning
// edge. That matches the behavior planner output has always had, and
// downstream consumers depend on it.
func MinimumBoundingBox(hull domain.Polygon, orientationOffsetDeg float64) (domain.Polygon, error) {
	verts := hull.Vertices()
	if len(verts) < 3 {
		return nil, domain.ErrDegenerateHull
	}
	center := geospatial.Centroid(hull)

	bestArea := math.Inf(1)
	var best domain.Polygon
	var lastBearing float64
	for i := range verts {
		theta := geospatial.Bearing(verts[i], verts[(i+1)%len(verts)])
		lastBearing = theta
		box := axisAlignedBox(geospatial.RotatePolygon(hull, center, -theta))
		if a := geospatial.AreaM2(box); a < bestArea {
			bestArea = a
			best = geospatial.RotatePolygon(box, center, theta)
		}
	}
	if best == nil {
		return nil, domain.ErrDegenerateHull
	}

	if orientationOffsetDeg > 0 {
		theta := lastBearing + orientationOffsetDeg
		box := axisAlignedBox(geospatial.RotatePolygon(hull, center, -theta))
		best = geospatial.RotatePolygon(box, center, theta)
	}
	return best, nil
}

// axisAlignedBox returns the bounding rectangle of a ring as a closed
// polygon whose first side points north, so that rotating it by theta
// gives Bearing(v0, v1) == theta.
func axisAlignedBox(p domain.Polygon) domain.Polygon {
	v := p.Vertices()
	minLon, maxLon := v[0].Lon, v[0].Lon
	minLat, maxLat := v[0].Lat, v[0].Lat
	for _, q := range v[1:] {
		minLon = math.Min(minLon, q.Lon)
		maxLon = math.Max(maxLon, q.Lon)
		minLat = math.Min(minLat, q.Lat)
		maxLat = math.Max(maxLat, q.Lat)
	}
	return domain.Polygon{
		{Lon: minLon, Lat: minLat},
		{Lon: minLon, Lat: maxLat},
		{Lon: maxLon, Lat: maxLat},
		{Lon: maxLon, Lat: minLat},
		{Lon: minLon, Lat: minLat},
	}
}
