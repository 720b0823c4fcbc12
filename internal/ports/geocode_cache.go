package ports

import (
	"context"
	"member-locator-service/internal/domain"
)

// Persistent query -> point cache for forward geocoding.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	Get(ctx context.Context, key string) (domain.GeoPoint, bool, error)
	Put(ctx context.Context, key string, p domain.GeoPoint) error
}
