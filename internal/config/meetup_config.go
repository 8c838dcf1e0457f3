package config

import "time"

const (
	// Proximity check. The earth radius and the meters-to-feet factor are
	// pinned; the boundary comparison is sensitive to rounding.
	ProximityThresholdFeet = 10.0
	EarthRadiusMeters      = 6371000.0
	FeetPerMeter           = 3.28084

	// Polling client
	StatusPollInterval = 3 * time.Second
	ViewStateMaxAge    = time.Hour

	// Abandoned pending sessions are resolved by the admin sweep once they
	// are older than this.
	PendingSessionTTL = 24 * time.Hour
)
