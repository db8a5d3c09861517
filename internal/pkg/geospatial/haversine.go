package geospatial

import (
	"math"

	"github.com/terralawn/mowplan/internal/core/domain"
)

const (
	earthRadiusKm = 6371.0
	// metersPerDegree approximates one degree of latitude. Longitude
	// degrees are scaled by cos(lat).
	metersPerDegree = 111320.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b domain.Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000 // meters
}

// Bearing returns the initial great-circle bearing from a to b in
// degrees, normalized to [0, 360).
func Bearing(a, b domain.Point) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dLon := toRad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	return NormalizeDeg(toDeg(math.Atan2(y, x)))
}

// Destination returns the point reached by travelling distMeters from
// p on the given bearing.
func Destination(p domain.Point, bearingDeg, distMeters float64) domain.Point {
	delta := distMeters / (earthRadiusKm * 1000)
	theta := toRad(bearingDeg)
	phi1 := toRad(p.Lat)
	lam1 := toRad(p.Lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lam2 := lam1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return domain.Point{Lon: toDeg(lam2), Lat: toDeg(phi2)}
}

// LengthM returns the length of a line string in meters.
func LengthM(ls domain.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Haversine(ls[i-1], ls[i])
	}
	return total
}

// NormalizeDeg wraps an angle into [0, 360).
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
