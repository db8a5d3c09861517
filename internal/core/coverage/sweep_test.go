package coverage

import (
	"math"
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

func planSquareSweep(t *testing.T) (domain.Polygon, domain.CoverageGrid, domain.LineString) {
	t.Helper()
	boundary, grid := buildSquareGrid(t, 0.25, 0)
	router := NewRouter(boundary, nil, nil)
	sweeper := NewSweeper(boundary, nil, router, grid)

	var path domain.LineString
	for {
		before := len(path)
		path = sweeper.Pass(path)
		if grid.CoverageFraction() >= coverageTarget || len(path) == before {
			break
		}
	}
	return boundary, grid, path
}

func TestSweepCoversOpenSquare(t *testing.T) {
	boundary, grid, path := planSquareSweep(t)

	if cov := grid.CoverageFraction(); cov < 0.99 {
		t.Errorf("open square should be fully covered, got %f", cov)
	}
	if len(path) < 8 {
		t.Errorf("expected at least 8 waypoints, got %d", len(path))
	}
	for _, p := range []domain.Point{path[0], path[len(path)-1]} {
		if !geospatial.PointInPolygon(p, boundary) {
			t.Errorf("path endpoint %+v outside boundary", p)
		}
	}
}

func TestSweepAlternatesDirection(t *testing.T) {
	_, _, path := planSquareSweep(t)
	if len(path) < 4 {
		t.Fatalf("path too short to check alternation: %d", len(path))
	}

	// Row traversals are the long hops; consecutive rows run in
	// opposite directions.
	first := geospatial.Bearing(path[0], path[1])
	second := geospatial.Bearing(path[2], path[3])
	diff := math.Abs(math.Mod(second-first+360, 360))
	if math.Abs(diff-180) > 5 {
		t.Errorf("expected opposite directions, got %f and %f", first, second)
	}
}

func TestSweepStopsAtRowGap(t *testing.T) {
	boundary := squareBoundary(0, 0, 100*deg)
	cell := func(row, col int, state domain.VisitState) *domain.CoverageCell {
		c := domain.Point{Lon: float64(col*10+5) * deg, Lat: float64(row*10+5) * deg}
		return &domain.CoverageCell{Row: row, Col: col, State: state, Centroid: c}
	}
	grid := domain.CoverageGrid{
		cell(0, 0, domain.Unvisited),
		cell(0, 1, domain.Unvisited),
		cell(0, 2, domain.Unvisitable), // the gap
		cell(0, 3, domain.Unvisited),
		cell(0, 4, domain.Unvisited),
	}

	sweeper := NewSweeper(boundary, nil, NewRouter(boundary, nil, nil), grid)
	path := sweeper.Pass(nil)

	// The first pass stops at the gap.
	if grid[1].State != domain.Visited {
		t.Error("cell before the gap should be visited")
	}
	if grid[3].State != domain.Unvisited || grid[4].State != domain.Unvisited {
		t.Error("cells past the gap belong to a later pass")
	}
	if len(path) != 2 {
		t.Fatalf("expected entry and gap-exit waypoints, got %d: %v", len(path), path)
	}

	// The second pass resumes past the gap via the router.
	path = sweeper.Pass(path)
	if grid[3].State != domain.Visited || grid[4].State != domain.Visited {
		t.Error("resume pass should finish the row")
	}
	if grid.CoverageFraction() < 0.99 {
		t.Errorf("expected full coverage, got %f", grid.CoverageFraction())
	}
}

func TestSweepReturnsEarlyOnUnmowedTerritory(t *testing.T) {
	boundary := squareBoundary(0, 0, 100*deg)
	cell := func(row, col int, state domain.VisitState) *domain.CoverageCell {
		c := domain.Point{Lon: float64(row*10+5) * deg, Lat: float64(col*10+5) * deg}
		return &domain.CoverageCell{Row: row, Col: col, State: state, Centroid: c}
	}
	// Row 0 breaks at an unvisitable gap, leaving cells 2 and 3
	// unvisited. Row 1, walking back past those columns, must bank
	// its progress and return early.
	grid := domain.CoverageGrid{
		cell(0, 0, domain.Unvisited),
		cell(0, 1, domain.Unvisitable),
		cell(0, 2, domain.Unvisited),
		cell(0, 3, domain.Unvisited),
		cell(1, 0, domain.Unvisited),
		cell(1, 1, domain.Unvisited),
		cell(1, 2, domain.Unvisited),
		cell(1, 3, domain.Unvisited),
	}

	sweeper := NewSweeper(boundary, nil, NewRouter(boundary, nil, nil), grid)

	path := sweeper.Pass(nil)
	if len(path) == 0 {
		t.Fatal("pass emitted nothing")
	}
	if grid[2].State != domain.Unvisited || grid[3].State != domain.Unvisited {
		t.Error("row 0 cells past the gap should still be pending after pass 1")
	}
	if grid[4].State == domain.Visited && grid[5].State == domain.Visited &&
		grid[6].State == domain.Visited && grid[7].State == domain.Visited {
		t.Error("row 1 should have returned early over the unmowed row 0 cells")
	}
	// After the first pass everything reachable must eventually be
	// covered by repeated passes.
	for i := 0; i < 5; i++ {
		before := len(path)
		path = sweeper.Pass(path)
		if grid.CoverageFraction() >= coverageTarget || len(path) == before {
			break
		}
	}
	if grid.CoverageFraction() < 0.99 {
		t.Errorf("repeated passes should converge, got %f", grid.CoverageFraction())
	}
}

func TestPrunePathIdempotent(t *testing.T) {
	var path domain.LineString
	for i := 0; i < 20; i++ {
		path = append(path, domain.Point{Lon: float64(i) * deg / 20, Lat: 0})
	}
	once := PrunePath(path, 0.125)
	twice := PrunePath(once, 0.125)
	if len(once) != len(twice) {
		t.Fatalf("pruning must be idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if !once[i].Equal(twice[i]) {
			t.Errorf("vertex %d changed on second prune", i)
		}
	}
	if len(once) >= len(path) {
		t.Error("pruning should drop dense vertices")
	}
}

func TestCoverageFractionExcludesUnvisitable(t *testing.T) {
	grid := domain.CoverageGrid{
		{State: domain.Visited},
		{State: domain.Unvisited},
		{State: domain.Unvisitable},
		{State: domain.Unvisitable},
	}
	if f := grid.CoverageFraction(); math.Abs(f-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %f", f)
	}
}
