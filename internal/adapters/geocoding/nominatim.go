package geocoding

import (
	"context"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"net/url"
	"strconv"
	"strings"
)

const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

type searchCandidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// NominatimClient talks to an OpenStreetMap Nominatim instance for
// free-text search and reverse geocoding.
type NominatimClient struct {
	http httpClient
}

func NewNominatimClient(baseURL string, opts ...Option) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	return &NominatimClient{http: newHTTPClient("nominatim", baseURL, opts)}
}

// Search resolves free text to the first candidate Nominatim returns.
func (c *NominatimClient) Search(ctx context.Context, text string) (domain.GeoPoint, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", text)

	var decoded []searchCandidate
	if err := c.http.getJSON(ctx, c.http.baseURL+"/search", q, &decoded); err != nil {
		obs.GeocodeRequests.WithLabelValues("nominatim", obs.OutcomeError).Inc()
		return domain.GeoPoint{}, fmt.Errorf("search %q: %w: %w", text, domain.ErrProvider, err)
	}

	return pointFromSearch(text, decoded)
}

// pointFromSearch adapts the Nominatim candidate list to a GeoPoint.
func pointFromSearch(text string, candidates []searchCandidate) (domain.GeoPoint, error) {
	if len(candidates) == 0 {
		obs.GeocodeRequests.WithLabelValues("nominatim", obs.OutcomeNotFound).Inc()
		return domain.GeoPoint{}, fmt.Errorf("search %q: no candidates: %w", text, domain.ErrNotFound)
	}

	first := candidates[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(first.Lat), 64)
	if err != nil {
		obs.GeocodeRequests.WithLabelValues("nominatim", obs.OutcomeError).Inc()
		return domain.GeoPoint{}, fmt.Errorf("search %q: parse lat %q: %w", text, first.Lat, domain.ErrProvider)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(first.Lon), 64)
	if err != nil {
		obs.GeocodeRequests.WithLabelValues("nominatim", obs.OutcomeError).Inc()
		return domain.GeoPoint{}, fmt.Errorf("search %q: parse lon %q: %w", text, first.Lon, domain.ErrProvider)
	}

	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		obs.GeocodeRequests.WithLabelValues("nominatim", obs.OutcomeError).Inc()
		return domain.GeoPoint{}, fmt.Errorf("search %q: invalid point %s: %w", text, p, domain.ErrProvider)
	}

	obs.GeocodeRequests.WithLabelValues("nominatim", obs.OutcomeOK).Inc()
	return p, nil
}

// PlaceName returns the city, town or village containing p, in that preference.
// An empty name with a nil error means the address breakdown had none of them.
func (c *NominatimClient) PlaceName(ctx context.Context, p domain.GeoPoint) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	q.Set("format", "json")

	var decoded reverseResponse
	if err := c.http.getJSON(ctx, c.http.baseURL+"/reverse", q, &decoded); err != nil {
		obs.GeocodeRequests.WithLabelValues("nominatim_reverse", obs.OutcomeError).Inc()
		return "", fmt.Errorf("reverse %s: %w: %w", p, domain.ErrProvider, err)
	}

	a := decoded.Address
	for _, name := range []string{a.City, a.Town, a.Village} {
		if name = strings.TrimSpace(name); name != "" {
			obs.GeocodeRequests.WithLabelValues("nominatim_reverse", obs.OutcomeOK).Inc()
			return name, nil
		}
	}

	obs.GeocodeRequests.WithLabelValues("nominatim_reverse", obs.OutcomeNotFound).Inc()
	return "", nil
}
