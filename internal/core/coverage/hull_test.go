package coverage

import (
	"math"
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

const deg = 0.00001

func squareBoundary(lon, lat, side float64) domain.Polygon {
	return domain.Polygon{
		{Lon: lon, Lat: lat},
		{Lon: lon + side, Lat: lat},
		{Lon: lon + side, Lat: lat + side},
		{Lon: lon, Lat: lat + side},
		{Lon: lon, Lat: lat},
	}
}

func TestConvexHullDropsInteriorPoints(t *testing.T) {
	poly := domain.Polygon{
		{Lon: 0, Lat: 0},
		{Lon: deg, Lat: 0},
		{Lon: deg / 2, Lat: deg / 2}, // interior
		{Lon: deg, Lat: deg},
		{Lon: 0, Lat: deg},
		{Lon: 0, Lat: 0},
	}
	hull, err := ConvexHull(poly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hull.Closed() {
		t.Error("hull ring must be closed")
	}
	for _, p := range hull.Vertices() {
		if p.Equal(domain.Point{Lon: deg / 2, Lat: deg / 2}) {
			t.Error("interior point must not appear on the hull")
		}
	}
	if len(hull.Vertices()) != 4 {
		t.Errorf("expected 4 hull vertices, got %d", len(hull.Vertices()))
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	point := domain.Polygon{
		{Lon: 0, Lat: 0},
		{Lon: 0, Lat: 0},
		{Lon: 0, Lat: 0},
	}
	if _, err := ConvexHull(point); err != domain.ErrDegenerateHull {
		t.Errorf("expected ErrDegenerateHull, got %v", err)
	}
}

func TestMinimumBoundingBoxAxisAligned(t *testing.T) {
	hull, err := ConvexHull(squareBoundary(0, 0, deg))
	if err != nil {
		t.Fatalf("hull: %v", err)
	}
	mbb, err := MinimumBoundingBox(hull, 0)
	if err != nil {
		t.Fatalf("mbb: %v", err)
	}
	if len(mbb.Vertices()) != 4 {
		t.Fatalf("expected rectangle, got %d vertices", len(mbb.Vertices()))
	}

	// The minimum box of a square is the square itself, up to
	// rounding: areas agree within a few percent.
	ratio := geospatial.AreaM2(mbb) / geospatial.AreaM2(hull)
	if ratio < 0.95 || ratio > 1.1 {
		t.Errorf("expected area ratio ~1, got %f", ratio)
	}
}

func TestMinimumBoundingBoxRotated(t *testing.T) {
	// A diamond: a square rotated 45 degrees. Its minimum box hugs
	// the diamond edges instead of the axis-aligned bbox, whose area
	// would be twice as large.
	diamond := domain.Polygon{
		{Lon: deg, Lat: 0},
		{Lon: 2 * deg, Lat: deg},
		{Lon: deg, Lat: 2 * deg},
		{Lon: 0, Lat: deg},
		{Lon: deg, Lat: 0},
	}
	hull, err := ConvexHull(diamond)
	if err != nil {
		t.Fatalf("hull: %v", err)
	}
	mbb, err := MinimumBoundingBox(hull, 0)
	if err != nil {
		t.Fatalf("mbb: %v", err)
	}
	ratio := geospatial.AreaM2(mbb) / geospatial.AreaM2(hull)
	if ratio > 1.2 {
		t.Errorf("minimum box should hug the diamond, area ratio %f", ratio)
	}
}

func TestMinimumBoundingBoxOrientationOffset(t *testing.T) {
	hull, err := ConvexHull(squareBoundary(0, 0, deg))
	if err != nil {
		t.Fatalf("hull: %v", err)
	}

	base, err := MinimumBoundingBox(hull, 0)
	if err != nil {
		t.Fatalf("mbb: %v", err)
	}
	offset, err := MinimumBoundingBox(hull, 45)
	if err != nil {
		t.Fatalf("mbb offset: %v", err)
	}

	baseBearing := geospatial.Bearing(base[0], base[1])
	offsetBearing := geospatial.Bearing(offset[0], offset[1])
	diff := math.Abs(math.Mod(offsetBearing-baseBearing+360, 90))
	if math.Min(diff, 90-diff) < 30 {
		t.Errorf("offset box should be rotated well away from the base box: %f vs %f", baseBearing, offsetBearing)
	}

	// The offset box still contains every hull vertex.
	for _, p := range hull.Vertices() {
		if !geospatial.PointInPolygon(p, offset) && geospatial.DistanceToRingM(p, offset) > 0.01 {
			t.Errorf("hull vertex %+v escaped the offset box", p)
		}
	}
}
