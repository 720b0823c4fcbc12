package position

import (
	"context"
	"errors"
	"fmt"
	"member-locator-service/internal/domain"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// CityLookup is the subset of *geoip2.Reader used here.
type CityLookup interface {
	City(ip net.IP) (*geoip2.City, error)
}

// OpenGeoIP opens an MMDB city database. It returns nil, nil when path is
// empty or the file does not exist, so callers can run without GeoIP.
func OpenGeoIP(path string) (*geoip2.Reader, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %q: %w", path, err)
	}
	return r, nil
}

// GeoIP approximates the device position from the client IP address.
type GeoIP struct {
	Reader CityLookup
	IP     string
}

func (g GeoIP) Position(ctx context.Context) (domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return domain.GeoPoint{}, err
	}
	if g.Reader == nil {
		return domain.GeoPoint{}, domain.ErrPositionUnavailable
	}

	host, _, err := net.SplitHostPort(g.IP)
	if err != nil {
		host = g.IP
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return domain.GeoPoint{}, fmt.Errorf("geoip %q: %w", g.IP, domain.ErrPositionUnavailable)
	}

	record, err := g.Reader.City(ip)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geoip %q: %w: %w", g.IP, domain.ErrPositionUnavailable, err)
	}

	p := domain.GeoPoint{Lat: record.Location.Latitude, Lon: record.Location.Longitude}
	if !p.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("geoip %q: no coordinates: %w", g.IP, domain.ErrPositionUnavailable)
	}

	return p, nil
}
