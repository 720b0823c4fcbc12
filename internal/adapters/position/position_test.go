package position

import (
	"context"
	"errors"
	"member-locator-service/internal/domain"
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCities struct {
	record *geoip2.City
	err    error
	seen   []string
}

func (f *fakeCities) City(ip net.IP) (*geoip2.City, error) {
	f.seen = append(f.seen, ip.String())
	return f.record, f.err
}

func cityAt(lat, lon float64) *geoip2.City {
	c := &geoip2.City{}
	c.Location.Latitude = lat
	c.Location.Longitude = lon
	return c
}

func TestClientPosition(t *testing.T) {
	ctx := context.Background()
	p := domain.GeoPoint{Lat: 53.48, Lon: -2.24}

	got, err := Client{Point: &p}.Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = Client{Point: &p, Denied: true}.Position(ctx)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = Client{}.Position(ctx)
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)

	_, err = Client{Point: &domain.GeoPoint{}}.Position(ctx)
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
}

func TestGeoIPPosition(t *testing.T) {
	cities := &fakeCities{record: cityAt(55.95, -3.19)}

	got, err := GeoIP{Reader: cities, IP: "81.2.69.160:5123"}.Position(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPoint{Lat: 55.95, Lon: -3.19}, got)
	assert.Equal(t, []string{"81.2.69.160"}, cities.seen)
}

func TestGeoIPUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		reader CityLookup
		ip     string
	}{
		{"no reader", nil, "81.2.69.160"},
		{"loopback", &fakeCities{record: cityAt(1, 1)}, "127.0.0.1"},
		{"private", &fakeCities{record: cityAt(1, 1)}, "10.1.2.3"},
		{"garbage", &fakeCities{record: cityAt(1, 1)}, "not-an-ip"},
		{"lookup error", &fakeCities{err: errors.New("corrupt")}, "81.2.69.160"},
		{"no coordinates", &fakeCities{record: cityAt(0, 0)}, "81.2.69.160"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GeoIP{Reader: tt.reader, IP: tt.ip}.Position(context.Background())
			assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
		})
	}
}

func TestFirstOf(t *testing.T) {
	ctx := context.Background()
	p := domain.GeoPoint{Lat: 51.45, Lon: -2.58}
	geo := GeoIP{Reader: &fakeCities{record: cityAt(55.95, -3.19)}, IP: "81.2.69.160"}

	got, err := FirstOf(Client{Point: &p}, geo).Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got, err = FirstOf(Client{}, geo).Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPoint{Lat: 55.95, Lon: -3.19}, got)

	_, err = FirstOf(Client{Denied: true}, geo).Position(ctx)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = FirstOf(Client{}, GeoIP{}).Position(ctx)
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)

	_, err = FirstOf().Position(ctx)
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
}

func TestOpenGeoIPMissingFile(t *testing.T) {
	r, err := OpenGeoIP("")
	assert.NoError(t, err)
	assert.Nil(t, r)

	r, err = OpenGeoIP(t.TempDir() + "/missing.mmdb")
	assert.NoError(t, err)
	assert.Nil(t, r)
}
