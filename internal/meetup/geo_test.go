package meetup_test

import (
	"testing"

	"meetgo/backend/internal/meetup"
	"meetgo/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDistanceFeet_SamePointIsZero(t *testing.T) {
	p := models.Location{Latitude: 40.7128, Longitude: -74.0060}
	assert.InDelta(t, 0.0, meetup.DistanceFeet(p, p), 1e-9)
}

func TestDistanceFeet_KnownArc(t *testing.T) {
	// 0.001 degrees of latitude is 111.1949 m on the pinned sphere,
	// which is 364.81 ft.
	a := models.Location{Latitude: 0, Longitude: 0}
	b := models.Location{Latitude: 0.001, Longitude: 0}
	assert.InDelta(t, 364.81, meetup.DistanceFeet(a, b), 0.05)
}

// Distance is symmetric in its arguments.
func TestDistanceFeet_Symmetry(t *testing.T) {
	pairs := [][2]models.Location{
		{{Latitude: 40.7128, Longitude: -74.0060}, {Latitude: 34.0522, Longitude: -118.2437}},
		{{Latitude: 0, Longitude: 0}, {Latitude: 0.0001, Longitude: 0.0001}},
		{{Latitude: -33.8688, Longitude: 151.2093}, {Latitude: 51.5074, Longitude: -0.1278}},
	}

	for _, pair := range pairs {
		forward := meetup.DistanceFeet(pair[0], pair[1])
		backward := meetup.DistanceFeet(pair[1], pair[0])
		assert.InDelta(t, forward, backward, 1e-9)
	}
}

// The 10 ft threshold is an exact, inclusive boundary.
func TestWithinProximity_Boundary(t *testing.T) {
	assert.True(t, meetup.WithinProximity(9.99))
	assert.True(t, meetup.WithinProximity(10.00))
	assert.False(t, meetup.WithinProximity(10.01))
}

func TestDistanceFeet_NearThreshold(t *testing.T) {
	a := models.Location{Latitude: 0, Longitude: 0}

	inside := models.Location{Latitude: 0, Longitude: lonDegreesForFeet(9.9)}
	d := meetup.DistanceFeet(a, inside)
	assert.InDelta(t, 9.9, d, 0.01)
	assert.True(t, meetup.WithinProximity(d))

	outside := models.Location{Latitude: 0, Longitude: lonDegreesForFeet(10.1)}
	d = meetup.DistanceFeet(a, outside)
	assert.InDelta(t, 10.1, d, 0.01)
	assert.False(t, meetup.WithinProximity(d))
}
