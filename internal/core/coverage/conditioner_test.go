package coverage

import (
	"errors"
	"testing"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

func TestConditionKeepsContainedObstacle(t *testing.T) {
	boundary := squareBoundary(0, 0, 10*deg)
	obstacle := squareBoundary(4*deg, 4*deg, 2*deg)

	working, obstacles, err := Condition(boundary, []domain.Polygon{obstacle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obstacles) != 1 {
		t.Fatalf("expected 1 working obstacle, got %d", len(obstacles))
	}
	if ratio := geospatial.AreaM2(working) / geospatial.AreaM2(boundary); ratio < 0.99 {
		t.Errorf("interior obstacle must not shrink the boundary, area ratio %f", ratio)
	}
}

func TestConditionDropsOutsideObstacle(t *testing.T) {
	boundary := squareBoundary(0, 0, 10*deg)
	obstacle := squareBoundary(20*deg, 0, 2*deg)

	working, obstacles, err := Condition(boundary, []domain.Polygon{obstacle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obstacles) != 0 {
		t.Errorf("outside obstacle must be dropped, got %d", len(obstacles))
	}
	if ratio := geospatial.AreaM2(working) / geospatial.AreaM2(boundary); ratio < 0.99 {
		t.Errorf("outside obstacle must not shrink the boundary, area ratio %f", ratio)
	}
}

func TestConditionNotchesStraddlingObstacle(t *testing.T) {
	boundary := squareBoundary(0, 0, 10*deg)
	// Half inside, half outside across the right edge.
	obstacle := squareBoundary(8*deg, 4*deg, 4*deg)

	working, obstacles, err := Condition(boundary, []domain.Polygon{obstacle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obstacles) != 0 {
		t.Errorf("straddling obstacle must not survive as an obstacle, got %d", len(obstacles))
	}
	ratio := geospatial.AreaM2(working) / geospatial.AreaM2(boundary)
	if ratio > 0.99 || ratio < 0.8 {
		t.Errorf("boundary should carry a notch, area ratio %f", ratio)
	}
	// The notch interior is no longer inside the working boundary.
	notchCenter := domain.Point{Lon: 9 * deg, Lat: 6 * deg}
	if geospatial.PointInPolygon(notchCenter, working) {
		t.Error("point inside the notch must fall outside the working boundary")
	}
}

func TestConditionBoundarySwallowed(t *testing.T) {
	boundary := squareBoundary(4*deg, 4*deg, deg)
	obstacle := squareBoundary(0, 0, 10*deg)

	_, _, err := Condition(boundary, []domain.Polygon{obstacle})
	if !errors.Is(err, domain.ErrEmptyBoundary) {
		t.Errorf("expected ErrEmptyBoundary, got %v", err)
	}
}

func TestConditionEmptyInput(t *testing.T) {
	if _, _, err := Condition(domain.Polygon{{Lon: 0, Lat: 0}}, nil); !errors.Is(err, domain.ErrEmptyBoundary) {
		t.Errorf("expected ErrEmptyBoundary, got %v", err)
	}
}
