// Package geo holds the coordinate type and the great-circle distance used
// by the proximity query.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the distance formula.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between a and b in kilometers
// using the spherical law of cosines.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	arg := math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLon) + math.Sin(lat1)*math.Sin(lat2)

	// Floating-point error can push the argument just outside [-1, 1] when
	// the points coincide, which would make acos return NaN.
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}

	return EarthRadiusKm * math.Acos(arg)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
