package ports

import (
	"context"
	"member-locator-service/internal/domain"
)

// Host positioning capability. One call yields exactly one reading.
type PositionSource interface {
	// Return the current position, or domain.ErrPermissionDenied /
	// domain.ErrPositionUnavailable.
	Position(ctx context.Context) (domain.GeoPoint, error)
}
