// Package geo provides great-circle distance helpers for activity locations.
package geo

import "math"

// earthRadiusKm is the mean radius of the Earth used by the haversine formula.
const earthRadiusKm = 6371

// Position is a WGS84 coordinate pair.
type Position struct {
	Latitude  float64
	Longitude float64
}

// DegreesToRadians converts an angle from degrees to radians.
func DegreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// DistanceKm returns the great-circle distance in kilometers between two
// coordinates using the haversine formula.
func DistanceKm(latitude1, longitude1, latitude2, longitude2 float64) float64 {
	deltaLatitude := DegreesToRadians(latitude2 - latitude1)
	deltaLongitude := DegreesToRadians(longitude2 - longitude1)

	a := math.Sin(deltaLatitude/2)*math.Sin(deltaLatitude/2) +
		math.Cos(DegreesToRadians(latitude1))*
			math.Cos(DegreesToRadians(latitude2))*
			math.Sin(deltaLongitude/2)*math.Sin(deltaLongitude/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
