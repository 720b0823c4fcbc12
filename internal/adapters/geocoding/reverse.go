package geocoding

import (
	"context"
	"member-locator-service/internal/domain"

	"github.com/sirupsen/logrus"
)

// PlaceNamer returns a settlement name for a point, or "" when there is none.
type PlaceNamer interface {
	PlaceName(ctx context.Context, p domain.GeoPoint) (string, error)
}

// Labeler implements ports.ReverseGeocoder. Labels are cosmetic, so every
// failure degrades to domain.UnknownLocation instead of propagating.
type Labeler struct {
	namer PlaceNamer
	log   logrus.FieldLogger
}

func NewLabeler(namer PlaceNamer, log logrus.FieldLogger) *Labeler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Labeler{namer: namer, log: log}
}

func (l *Labeler) Label(ctx context.Context, p domain.GeoPoint) string {
	if l.namer == nil || !p.Valid() {
		return domain.UnknownLocation
	}

	name, err := l.namer.PlaceName(ctx, p)
	if err != nil {
		l.log.WithError(err).WithField("point", p.String()).Info("reverse geocode failed")
		return domain.UnknownLocation
	}
	if name == "" {
		return domain.UnknownLocation
	}

	return name
}
