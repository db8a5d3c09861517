package coverage

import (
	"sort"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// Sweeper drives the Boustrophedon traversal of the coverage grid.
// It owns the grid for the duration of planning and is the only
// writer of cell visit states.
type Sweeper struct {
	boundary  domain.Polygon
	obstacles []domain.Polygon
	router    *Router
	rows      [][]*domain.CoverageCell
	rowIndex  map[int][]*domain.CoverageCell
}

// NewSweeper prepares a sweep over the grid, rows sorted by gridRow
// and cells within each row by gridCol.
func NewSweeper(boundary domain.Polygon, obstacles []domain.Polygon, router *Router, grid domain.CoverageGrid) *Sweeper {
	rowIndex := make(map[int][]*domain.CoverageCell)
	for _, c := range grid {
		rowIndex[c.Row] = append(rowIndex[c.Row], c)
	}
	var rowNums []int
	for r := range rowIndex {
		rowNums = append(rowNums, r)
	}
	sort.Ints(rowNums)

	rows := make([][]*domain.CoverageCell, 0, len(rowNums))
	for _, r := range rowNums {
		cells := rowIndex[r]
		sort.Slice(cells, func(i, j int) bool { return cells[i].Col < cells[j].Col })
		rows = append(rows, cells)
	}
	return &Sweeper{
		boundary:  boundary,
		obstacles: obstacles,
		router:    router,
		rows:      rows,
		rowIndex:  rowIndex,
	}
}

// Pass runs one sweep over the rows in increasing gridRow order and
// returns the extended path. On a non-empty input path it first
// routes from the path's end to the next unvisited cell; if that
// routing fails the path is returned unchanged, since partial
// coverage is a legitimate outcome.
func (s *Sweeper) Pass(path domain.LineString) domain.LineString {
	var waypoints domain.LineString

	if len(path) > 0 {
		target := s.firstUnvisited()
		if target == nil {
			return path
		}
		route, err := s.router.ClearPath(path[len(path)-1], target.Centroid)
		if err != nil {
			return path
		}
		waypoints = appendWaypoints(waypoints, route[1:]...)
	}

	for _, rowCells := range s.rows {
		row := unvisitedInRow(rowCells)
		if len(row) == 0 {
			continue
		}
		if rowCells[0].Row%2 == 1 {
			row = reverseCells(row)
		}

		// Row entry: the first cell reachable in a straight free
		// segment from wherever we are. With no waypoints yet, the
		// row's first cell starts the whole path.
		entry := 0
		if len(waypoints) > 0 {
			last := waypoints[len(waypoints)-1]
			entry = -1
			for i, c := range row {
				if geospatial.PathClear(last, c.Centroid, s.boundary, s.obstacles) {
					entry = i
					break
				}
			}
			if entry < 0 {
				continue
			}
		}
		row[entry].State = domain.Visited
		waypoints = appendWaypoints(waypoints, row[entry].Centroid)

		for i := entry + 1; i < len(row); i++ {
			cell, prev := row[i], row[i-1]
			if abs(cell.Col-prev.Col) > 1 {
				// Obstacle gap: close the row at the last contiguous
				// cell; a later pass re-enters past the gap.
				waypoints = appendWaypoints(waypoints, prev.Centroid)
				break
			}
			if s.unmowedBehind(rowCells[0].Row-1, cell.Col) {
				// Territory left behind in the previous row: bank
				// what we have and let the outer loop come back.
				cell.State = domain.Visited
				waypoints = appendWaypoints(waypoints, cell.Centroid)
				return appendWaypoints(path, waypoints...)
			}
			cell.State = domain.Visited
			if i == len(row)-1 {
				waypoints = appendWaypoints(waypoints, cell.Centroid)
			}
		}
	}

	return appendWaypoints(path, waypoints...)
}

// firstUnvisited returns the next unvisited cell in scan order.
func (s *Sweeper) firstUnvisited() *domain.CoverageCell {
	for _, row := range s.rows {
		for _, c := range row {
			if c.State == domain.Unvisited {
				return c
			}
		}
	}
	return nil
}

// unmowedBehind reports whether the given row holds two or more
// unvisited cells within one column of col.
func (s *Sweeper) unmowedBehind(row, col int) bool {
	count := 0
	for _, c := range s.rowIndex[row] {
		if c.State == domain.Unvisited && abs(c.Col-col) <= 1 {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

func unvisitedInRow(cells []*domain.CoverageCell) []*domain.CoverageCell {
	var out []*domain.CoverageCell
	for _, c := range cells {
		if c.State == domain.Unvisited {
			out = append(out, c)
		}
	}
	return out
}

func reverseCells(cells []*domain.CoverageCell) []*domain.CoverageCell {
	out := make([]*domain.CoverageCell, len(cells))
	for i, c := range cells {
		out[len(cells)-1-i] = c
	}
	return out
}

// appendWaypoints appends points, dropping consecutive duplicates by
// fingerprint.
func appendWaypoints(ls domain.LineString, pts ...domain.Point) domain.LineString {
	for _, p := range pts {
		if len(ls) == 0 || !ls[len(ls)-1].Equal(p) {
			ls = append(ls, p)
		}
	}
	return ls
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PrunePath drops every vertex closer than pruneDistanceM to the last
// kept vertex. Applying it twice with the same distance is a no-op.
func PrunePath(path domain.LineString, pruneDistanceM float64) domain.LineString {
	if len(path) == 0 {
		return path
	}
	out := domain.LineString{path[0]}
	for _, p := range path[1:] {
		if geospatial.Haversine(out[len(out)-1], p) > pruneDistanceM {
			out = append(out, p)
		}
	}
	return out
}
