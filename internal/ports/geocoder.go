package ports

import (
	"context"
	"member-locator-service/internal/domain"
)

// Contract for resolving a search query (postcode or free text) to a point.
type ForwardGeocoder interface {
	// Fails with domain.ErrNotFound when nothing matches, domain.ErrProvider
	// on network or payload failures, domain.ErrEmptyQuery for blank input.
	Resolve(ctx context.Context, query string) (domain.GeoPoint, error)
}

// Contract for turning a point into a human readable place name.
type ReverseGeocoder interface {
	// Never fails; degrades to domain.UnknownLocation.
	Label(ctx context.Context, p domain.GeoPoint) string
}
