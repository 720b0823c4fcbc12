package position

import (
	"context"
	"errors"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/ports"
)

type firstOf []ports.PositionSource

// FirstOf tries sources in order and returns the first valid reading.
// A permission denial stops the chain: later sources are not consulted
// once the user has refused positioning.
func FirstOf(sources ...ports.PositionSource) ports.PositionSource {
	return firstOf(sources)
}

func (f firstOf) Position(ctx context.Context) (domain.GeoPoint, error) {
	lastErr := domain.ErrPositionUnavailable
	for _, s := range f {
		if s == nil {
			continue
		}
		p, err := s.Position(ctx)
		if err == nil && p.Valid() {
			return p, nil
		}
		if err == nil {
			err = domain.ErrPositionUnavailable
		}
		if errors.Is(err, domain.ErrPermissionDenied) {
			return domain.GeoPoint{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.GeoPoint{}, ctxErr
		}
		lastErr = err
	}
	return domain.GeoPoint{}, lastErr
}
