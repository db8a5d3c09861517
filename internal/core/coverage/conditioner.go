package coverage

import (
	"fmt"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// Condition derives the working boundary and working obstacles from
// the raw user polygons. Obstacles straddling the boundary are
// subtracted from it (they effectively redraw the fence line);
// obstacles wholly inside stay first-class; obstacles wholly outside
// are dropped. When subtraction splits the boundary into several
// pieces, the largest piece by area is kept.
func Condition(boundary domain.Polygon, obstacles []domain.Polygon) (domain.Polygon, []domain.Polygon, error) {
	if len(boundary.Vertices()) < 3 {
		return nil, nil, domain.ErrEmptyBoundary
	}
	working := boundary.Clone().Close()

	var contained []domain.Polygon
	for _, o := range obstacles {
		o = o.Close()
		switch {
		case geospatial.ContainsPolygon(working, o):
			contained = append(contained, o)
		case geospatial.Disjoint(working, o):
			// Wholly outside: irrelevant to the field.
		default:
			pieces := geospatial.Difference(working, o)
			if len(pieces) == 0 {
				return nil, nil, fmt.Errorf("boundary consumed by obstacle: %w", domain.ErrEmptyBoundary)
			}
			working = geospatial.LargestPolygon(pieces)
			if working == nil {
				return nil, nil, fmt.Errorf("boundary difference returned no usable ring: %w", domain.ErrGeometryPrecision)
			}
		}
	}

	if len(working.Vertices()) < 3 {
		return nil, nil, domain.ErrEmptyBoundary
	}
	return working, contained, nil
}
