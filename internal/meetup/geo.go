package meetup

import (
	"math"

	"meetgo/backend/internal/config"
	"meetgo/backend/internal/models"
)

// haversineMeters returns the great-circle distance in meters between two
// lat/lon points on a spherical earth.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return config.EarthRadiusMeters * c
}

// DistanceFeet returns the great-circle distance between two locations in feet.
func DistanceFeet(a, b models.Location) float64 {
	return haversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude) * config.FeetPerMeter
}

// WithinProximity reports whether the distance passes the meetup threshold.
// The boundary is inclusive: exactly 10 feet still succeeds.
func WithinProximity(distanceFeet float64) bool {
	return distanceFeet <= config.ProximityThresholdFeet
}
