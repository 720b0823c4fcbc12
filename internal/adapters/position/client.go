package position

import (
	"context"
	"member-locator-service/internal/domain"
)

// Client is the position reported by the consuming display itself.
// Denied means the user refused; a nil Point with Denied unset means the
// display has no positioning capability.
type Client struct {
	Point  *domain.GeoPoint
	Denied bool
}

func (c Client) Position(ctx context.Context) (domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return domain.GeoPoint{}, err
	}
	if c.Denied {
		return domain.GeoPoint{}, domain.ErrPermissionDenied
	}
	if c.Point == nil || !c.Point.Valid() {
		return domain.GeoPoint{}, domain.ErrPositionUnavailable
	}
	return *c.Point, nil
}
