package geocoding

import (
	"context"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"net/http"
	"net/url"
)

const DefaultPostcodesBaseURL = "https://api.postcodes.io"

type postcodeResponse struct {
	Status int `json:"status"`
	Result *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"result"`
}

// PostcodesClient looks up UK postcodes via postcodes.io (/postcodes/{code}).
type PostcodesClient struct {
	http httpClient
}

func NewPostcodesClient(baseURL string, opts ...Option) *PostcodesClient {
	if baseURL == "" {
		baseURL = DefaultPostcodesBaseURL
	}
	return &PostcodesClient{http: newHTTPClient("postcodes", baseURL, opts)}
}

// LookupPostcode resolves an exact postcode to its centre point.
func (c *PostcodesClient) LookupPostcode(ctx context.Context, postcode string) (domain.GeoPoint, error) {
	endpoint := c.http.baseURL + "/postcodes/" + url.PathEscape(postcode)

	var decoded postcodeResponse
	if err := c.http.getJSON(ctx, endpoint, nil, &decoded); err != nil {
		switch statusCode(err) {
		case http.StatusNotFound, http.StatusBadRequest:
			obs.GeocodeRequests.WithLabelValues("postcodes", obs.OutcomeNotFound).Inc()
			return domain.GeoPoint{}, fmt.Errorf("lookup postcode %q: %w", postcode, domain.ErrNotFound)
		}
		obs.GeocodeRequests.WithLabelValues("postcodes", obs.OutcomeError).Inc()
		return domain.GeoPoint{}, fmt.Errorf("lookup postcode %q: %w: %w", postcode, domain.ErrProvider, err)
	}

	return pointFromPostcode(postcode, decoded)
}

// pointFromPostcode adapts the postcodes.io envelope to a GeoPoint.
func pointFromPostcode(postcode string, r postcodeResponse) (domain.GeoPoint, error) {
	if r.Status != http.StatusOK || r.Result == nil || r.Result.Latitude == nil || r.Result.Longitude == nil {
		obs.GeocodeRequests.WithLabelValues("postcodes", obs.OutcomeNotFound).Inc()
		return domain.GeoPoint{}, fmt.Errorf("lookup postcode %q: status %d: %w", postcode, r.Status, domain.ErrNotFound)
	}

	p := domain.GeoPoint{Lat: *r.Result.Latitude, Lon: *r.Result.Longitude}
	if !p.Valid() {
		obs.GeocodeRequests.WithLabelValues("postcodes", obs.OutcomeNotFound).Inc()
		return domain.GeoPoint{}, fmt.Errorf("lookup postcode %q: no coordinates: %w", postcode, domain.ErrNotFound)
	}

	obs.GeocodeRequests.WithLabelValues("postcodes", obs.OutcomeOK).Inc()
	return p, nil
}
