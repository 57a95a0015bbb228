// Package geo holds the great-circle distance math used as the fallback
// metric when the routing service cannot answer.
package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// WGS84 points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WalkingMinutes estimates walking time for a distance, assuming ~5 km/h
// (12 minutes per kilometer), rounded to the nearest minute.
func WalkingMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm * 12))
}

// Round2 rounds to two decimal places, the precision used for displayed
// stop distances.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
