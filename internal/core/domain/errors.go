package domain

import "errors"

// Planner error kinds. All propagate to the plan boundary; the sweep
// driver treats ErrNoPath from resume routing as "keep the current
// path", since partial coverage is a legitimate outcome.
var (
	// ErrEmptyBoundary means conditioning clipped the whole boundary away.
	ErrEmptyBoundary = errors.New("empty boundary")
	// ErrDegenerateHull means the hull has fewer than three distinct vertices.
	ErrDegenerateHull = errors.New("degenerate hull")
	// ErrEmptyRoadmap means Voronoi extraction produced no usable segments.
	ErrEmptyRoadmap = errors.New("empty roadmap")
	// ErrNoPath means the router could not stitch or route between endpoints.
	ErrNoPath = errors.New("no path")
	// ErrGeometryPrecision means a primitive returned an inconsistent
	// result. Fatal for the current run.
	ErrGeometryPrecision = errors.New("geometry precision failure")
)
