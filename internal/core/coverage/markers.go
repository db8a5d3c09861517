package coverage

import (
	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

const (
	circleSegments    = 16
	markerRadiusRatio = 0.3
	arrowGapRatio     = 4.0
	arrowLegRatio     = 0.5
	arrowLegAngleDeg  = 150.0
)

// BuildMarkers derives the decoration feature set from the final
// path: a circle at the first vertex tagged start, one at the last
// tagged end, and an arrowhead at the midpoint of every vertex pair
// separated by more than four lane widths (the long bypass hops).
func BuildMarkers(path domain.LineString, laneWidthM float64) []domain.Marker {
	if len(path) < 2 {
		return nil
	}
	radius := markerRadiusRatio * laneWidthM

	markers := []domain.Marker{
		{Kind: domain.MarkerStart, Geometry: circle(path[0], radius)},
		{Kind: domain.MarkerEnd, Geometry: circle(path[len(path)-1], radius)},
	}

	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if geospatial.Haversine(a, b) <= arrowGapRatio*laneWidthM {
			continue
		}
		mid := domain.Point{Lon: (a.Lon + b.Lon) / 2, Lat: (a.Lat + b.Lat) / 2}
		bearing := geospatial.Bearing(a, b)
		leg := arrowLegRatio * laneWidthM
		markers = append(markers, domain.Marker{
			Kind: domain.MarkerArrow,
			Geometry: domain.LineString{
				geospatial.Destination(mid, bearing+arrowLegAngleDeg, leg),
				mid,
				geospatial.Destination(mid, bearing-arrowLegAngleDeg, leg),
			},
		})
	}
	return markers
}

func circle(center domain.Point, radiusM float64) domain.LineString {
	ring := make(domain.LineString, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		ring = append(ring, geospatial.Destination(center, float64(i)*360/circleSegments, radiusM))
	}
	return ring
}
