package coverage

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/terralawn/mowplan/internal/core/domain"
)

const (
	// coverageTarget stops the outer sweep loop once this fraction of
	// mowable cells is visited.
	coverageTarget = 0.99
	minLaneWidthM  = 0.1
)

var tracer = otel.Tracer("mowplan/coverage")

// Plan runs the full planning pipeline over a frozen snapshot of the
// inputs: condition the boundary, derive hull and minimum bounding
// box, lay the coverage grid, build the Voronoi roadmap, sweep, and
// decorate. It is a pure function of its inputs; identical inputs
// yield identical results.
func Plan(ctx context.Context, boundary domain.Polygon, obstacles []domain.Polygon, cfg domain.PlanConfig) (*domain.PlanResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "coverage.Plan", trace.WithAttributes(
		attribute.Float64("lane_width_m", cfg.LaneWidthM),
		attribute.Int("start_corner", cfg.StartCorner),
	))
	defer span.End()

	working, workingObstacles, err := stage1(ctx, "condition", func() (domain.Polygon, []domain.Polygon, error) {
		return Condition(boundary, obstacles)
	})
	if err != nil {
		return nil, err
	}

	var hull, mbb domain.Polygon
	err = stage(ctx, "hull_mbb", func() error {
		if hull, err = ConvexHull(working); err != nil {
			return err
		}
		mbb, err = MinimumBoundingBox(hull, cfg.MBBOrientationOffsetDeg)
		return err
	})
	if err != nil {
		return nil, err
	}

	var grid domain.CoverageGrid
	_ = stage(ctx, "grid", func() error {
		grid = BuildGrid(working, workingObstacles, mbb, cfg.LaneWidthM, cfg.StartCorner)
		return nil
	})

	var roadmap domain.Roadmap
	_ = stage(ctx, "roadmap", func() error {
		roadmap = BuildRoadmap(working, workingObstacles)
		return nil
	})
	if len(roadmap) == 0 {
		slog.DebugContext(ctx, "roadmap empty, router limited to direct lines",
			"error", domain.ErrEmptyRoadmap)
	}

	var path domain.LineString
	_ = stage(ctx, "sweep", func() error {
		router := NewRouter(working, workingObstacles, roadmap)
		sweeper := NewSweeper(working, workingObstacles, router, grid)
		for {
			before := len(path)
			path = sweeper.Pass(path)
			if grid.CoverageFraction() >= coverageTarget || len(path) == before {
				break
			}
		}
		path = PrunePath(path, cfg.LaneWidthM/2)
		return nil
	})

	result := &domain.PlanResult{
		WorkingBoundary:  working,
		WorkingObstacles: workingObstacles,
		Hull:             hull,
		MBB:              mbb,
		Grid:             grid,
		Roadmap:          roadmap,
		MowPath:          path,
		Markers:          BuildMarkers(path, cfg.LaneWidthM),
		TravelHeadingDeg: TravelHeading(grid),
		CoverageFraction: grid.CoverageFraction(),
	}
	span.SetAttributes(
		attribute.Float64("coverage_fraction", result.CoverageFraction),
		attribute.Int("path_vertices", len(path)),
		attribute.Int("roadmap_segments", len(roadmap)),
	)
	return result, nil
}

func validateConfig(cfg domain.PlanConfig) error {
	if cfg.LaneWidthM <= minLaneWidthM {
		return fmt.Errorf("lane width %.3f m must exceed %.1f m", cfg.LaneWidthM, minLaneWidthM)
	}
	if cfg.StartCorner < 0 || cfg.StartCorner > 3 {
		return fmt.Errorf("start corner %d must be 0-3", cfg.StartCorner)
	}
	if cfg.MBBOrientationOffsetDeg < 0 || cfg.MBBOrientationOffsetDeg > 180 {
		return fmt.Errorf("orientation offset %.1f must be within [0, 180]", cfg.MBBOrientationOffsetDeg)
	}
	if cfg.ObstacleMarginM < 0 {
		return fmt.Errorf("obstacle margin %.2f must not be negative", cfg.ObstacleMarginM)
	}
	return nil
}

func stage(ctx context.Context, name string, fn func() error) error {
	_, span := tracer.Start(ctx, "coverage."+name)
	defer span.End()
	err := fn()
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func stage1(ctx context.Context, name string, fn func() (domain.Polygon, []domain.Polygon, error)) (domain.Polygon, []domain.Polygon, error) {
	_, span := tracer.Start(ctx, "coverage."+name)
	defer span.End()
	b, o, err := fn()
	if err != nil {
		span.RecordError(err)
	}
	return b, o, err
}
