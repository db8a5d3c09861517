package missionfile

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

const (
	// minCircleSegments floors the polygonalization of circular
	// fences; targetSegmentLengthM caps how coarse the chord length
	// may grow on large circles.
	minCircleSegments    = 12
	targetSegmentLengthM = 1.0
)

// fence is one entry of a vendor mission file. Polygon fences carry
// points; circle fences carry a center and radius.
type fence struct {
	Type    string         `json:"type"` // "polygon" | "circle"
	Role    string         `json:"role"` // "boundary" | "obstacle"
	Points  []domain.Point `json:"points,omitempty"`
	Center  domain.Point   `json:"center,omitempty"`
	RadiusM float64        `json:"radius_m,omitempty"`
}

type missionFile struct {
	Name   string  `json:"name"`
	Fences []fence `json:"fences"`
}

// Read parses a vendor mission file into a boundary and obstacle set.
// Circular fences are polygonalized with at least minCircleSegments
// segments, more when needed to keep chords under the target length.
func Read(r io.Reader) (string, domain.Polygon, []domain.Polygon, error) {
	var mf missionFile
	if err := json.NewDecoder(r).Decode(&mf); err != nil {
		return "", nil, nil, fmt.Errorf("decode mission file: %w", err)
	}

	var boundary domain.Polygon
	var obstacles []domain.Polygon
	for i, f := range mf.Fences {
		poly, err := fencePolygon(f)
		if err != nil {
			return "", nil, nil, fmt.Errorf("fence %d: %w", i, err)
		}
		switch f.Role {
		case "boundary":
			if boundary != nil {
				return "", nil, nil, fmt.Errorf("fence %d: duplicate boundary fence", i)
			}
			boundary = poly
		case "obstacle":
			obstacles = append(obstacles, poly)
		default:
			return "", nil, nil, fmt.Errorf("fence %d: unknown role %q", i, f.Role)
		}
	}
	if boundary == nil {
		return "", nil, nil, fmt.Errorf("mission file has no boundary fence")
	}
	return mf.Name, boundary, obstacles, nil
}

func fencePolygon(f fence) (domain.Polygon, error) {
	switch f.Type {
	case "polygon":
		if len(f.Points) < 3 {
			return nil, fmt.Errorf("polygon fence needs at least 3 points, got %d", len(f.Points))
		}
		return domain.Polygon(f.Points).Close(), nil
	case "circle":
		if f.RadiusM <= 0 {
			return nil, fmt.Errorf("circle fence radius %.2f must be positive", f.RadiusM)
		}
		return circlePolygon(f.Center, f.RadiusM), nil
	default:
		return nil, fmt.Errorf("unknown fence type %q", f.Type)
	}
}

func circlePolygon(center domain.Point, radiusM float64) domain.Polygon {
	segments := int(math.Ceil(2 * math.Pi * radiusM / targetSegmentLengthM))
	if segments < minCircleSegments {
		segments = minCircleSegments
	}
	ring := make(domain.Polygon, 0, segments+1)
	for i := 0; i < segments; i++ {
		ring = append(ring, geospatial.Destination(center, float64(i)*360/float64(segments), radiusM))
	}
	return ring.Close()
}
