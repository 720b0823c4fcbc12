package domain

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371e3

// Immutable geographic point (latitude, longitude) in decimal degrees.
// The zero value is the sentinel for "unknown", never a real location.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p can be used as a real position.
// Rejects NaN, Inf, out-of-range values and the (0,0) sentinel.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	if p.Lat < -90 || p.Lat > 90 {
		return false
	}
	if p.Lon < -180 || p.Lon > 180 {
		return false
	}

	return !p.IsZero()
}

// IsZero reports whether p is the sentinel value.
func (p GeoPoint) IsZero() bool { return p.Lat == 0 && p.Lon == 0 }

// DistanceTo returns the great-circle distance to other in meters (haversine).
func (p GeoPoint) DistanceTo(other GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLon := (other.Lon - p.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}
