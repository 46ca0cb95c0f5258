// Package geometry converts geodetic coordinates into an earth-centred
// Cartesian frame so that point-to-point distances can be measured with plain
// Euclidean arithmetic.
package geometry

import "math"

// WGS 84 constants.
const (
	EarthRadius = 6378137.0
	E2          = 0.00669437999014
)

// Point is a position in the earth-centred, earth-fixed frame, in metres.
type Point struct {
	X, Y, Z float64
}

// ToCartesian converts latitude and longitude in degrees and an elevation in
// metres into a Point. The boolean is false when any input is missing (NaN),
// in which case the returned Point is meaningless.
func ToCartesian(lat, lon, ele float64) (Point, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(ele) {
		return Point{}, false
	}
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180
	sinLat, cosLat := math.Sincos(latRad)
	sinLon, cosLon := math.Sincos(lonRad)

	partialRadius := EarthRadius / math.Sqrt(1-E2*sinLat*sinLat)
	latRadius := (ele + partialRadius) * cosLat
	return Point{
		X: latRadius * cosLon,
		Y: latRadius * sinLon,
		Z: ((1-E2)*partialRadius + ele) * sinLat,
	}, true
}

// Distance returns the straight-line distance between two points.
func (p Point) Distance(q Point) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
