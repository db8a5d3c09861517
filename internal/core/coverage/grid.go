package coverage

import (
	"math"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// boundaryMarginM erodes the working boundary when labelling cell
// centroids, absorbing floating-point wobble right on the fence line.
const boundaryMarginM = 0.01

// BuildGrid lays a square grid of laneWidth-sided cells over the MBB,
// rotated to the MBB's orientation and anchored at one of its four
// corners, then labels every cell by testing its centroid against
// the working boundary and obstacles.
//
// Cells are generated lane by lane: gridRow increments whenever the
// generator moves to a new x in the rotated frame, gridCol counts
// cells along that lane. The sweep driver depends on exactly this
// order.
func BuildGrid(boundary domain.Polygon, obstacles []domain.Polygon, mbb domain.Polygon, laneWidthM float64, startCorner int) domain.CoverageGrid {
	theta := geospatial.Bearing(mbb[0], mbb[1])
	center := geospatial.Centroid(mbb)
	rot := -theta + 90*float64(startCorner%4)

	aligned := geospatial.RotatePolygon(mbb, center, rot)

	frame := geospatial.NewFrame(center)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range aligned.Vertices() {
		x, y := frame.ToLocal(p)
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	cols := int(math.Ceil((maxX - minX) / laneWidthM))
	rows := int(math.Ceil((maxY - minY) / laneWidthM))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	var grid domain.CoverageGrid
	for i := 0; i < cols; i++ { // new x => new gridRow
		x0 := minX + float64(i)*laneWidthM
		for j := 0; j < rows; j++ {
			y0 := minY + float64(j)*laneWidthM
			ring := domain.Polygon{
				frame.FromLocal(x0, y0),
				frame.FromLocal(x0, y0+laneWidthM),
				frame.FromLocal(x0+laneWidthM, y0+laneWidthM),
				frame.FromLocal(x0+laneWidthM, y0),
			}
			ring = geospatial.RotatePolygon(ring, center, -rot).Close()
			centroid := geospatial.Rotate(
				[]domain.Point{frame.FromLocal(x0+laneWidthM/2, y0+laneWidthM/2)},
				center, -rot,
			)[0]

			grid = append(grid, &domain.CoverageCell{
				Ring:     ring,
				Row:      i,
				Col:      j,
				State:    labelCell(centroid, boundary, obstacles),
				Centroid: centroid,
			})
		}
	}
	return grid
}

func labelCell(centroid domain.Point, boundary domain.Polygon, obstacles []domain.Polygon) domain.VisitState {
	if !geospatial.ContainsWithMarginM(boundary, centroid, boundaryMarginM) {
		return domain.Unvisitable
	}
	for _, o := range obstacles {
		if geospatial.PointInPolygon(centroid, o) {
			return domain.Unvisitable
		}
	}
	return domain.Unvisited
}

// TravelHeading reports the bearing of row 0, first cell to last, in
// [0, 360). It is surfaced to consumers but not used by the sweep.
func TravelHeading(grid domain.CoverageGrid) float64 {
	var first, last *domain.CoverageCell
	for _, c := range grid {
		if c.Row != 0 {
			continue
		}
		if first == nil || c.Col < first.Col {
			first = c
		}
		if last == nil || c.Col > last.Col {
			last = c
		}
	}
	if first == nil || last == nil || first == last {
		return 0
	}
	return geospatial.NormalizeDeg(geospatial.Bearing(first.Centroid, last.Centroid))
}
