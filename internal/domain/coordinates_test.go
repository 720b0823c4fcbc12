package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoPointValid(t *testing.T) {
	tests := []struct {
		name string
		p    GeoPoint
		want bool
	}{
		{"london", GeoPoint{Lat: 51.509865, Lon: -0.118092}, true},
		{"sentinel", GeoPoint{}, false},
		{"lat out of range", GeoPoint{Lat: 91, Lon: 0.5}, false},
		{"lon out of range", GeoPoint{Lat: 10, Lon: -181}, false},
		{"nan", GeoPoint{Lat: math.NaN(), Lon: 1}, false},
		{"inf", GeoPoint{Lat: 1, Lon: math.Inf(1)}, false},
		{"equator", GeoPoint{Lat: 0, Lon: 32.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}

func TestGeoPointDistanceTo(t *testing.T) {
	london := GeoPoint{Lat: 51.5, Lon: -0.12}
	birmingham := GeoPoint{Lat: 52.5, Lon: -1.9}

	assert.InDelta(t, 0, london.DistanceTo(london), 1e-6)
	// London to Birmingham is roughly 165 km.
	assert.InDelta(t, 165_000, london.DistanceTo(birmingham), 5_000)
	assert.InDelta(t, london.DistanceTo(birmingham), birmingham.DistanceTo(london), 1e-6)
}

func TestResolvedLocationWithLabel(t *testing.T) {
	orig := ResolvedLocation{Point: GeoPoint{Lat: 1, Lon: 2}, Source: SourceDevice}
	labelled := orig.WithLabel("Leeds")

	assert.Equal(t, "", orig.Label)
	assert.Equal(t, "Leeds", labelled.Label)
	assert.Equal(t, orig.Point, labelled.Point)
}
