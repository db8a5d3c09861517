package missionfile

import (
	"fmt"
	"io"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// WriteWaypoints emits a mow path as a vendor waypoint stream: one
// line per waypoint, home first. Home is the centroid of the working
// boundary.
func WriteWaypoints(w io.Writer, path domain.LineString, workingBoundary domain.Polygon) error {
	if len(path) == 0 {
		return fmt.Errorf("empty mow path")
	}
	home := geospatial.Centroid(workingBoundary)
	if _, err := fmt.Fprintf(w, "HOME\t%.7f\t%.7f\n", home.Lon, home.Lat); err != nil {
		return err
	}
	for i, p := range path {
		if _, err := fmt.Fprintf(w, "WP%04d\t%.7f\t%.7f\n", i, p.Lon, p.Lat); err != nil {
			return err
		}
	}
	return nil
}

// Waypoints converts a mow path into the structured waypoint form
// served by the API.
func Waypoints(path domain.LineString) []domain.Waypoint {
	out := make([]domain.Waypoint, len(path))
	for i, p := range path {
		out[i] = domain.Waypoint{Seq: i, Lon: p.Lon, Lat: p.Lat}
	}
	return out
}
