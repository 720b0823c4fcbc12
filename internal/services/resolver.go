package services

import (
	"context"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"member-locator-service/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPositionTimeout bounds the wait for a device reading.
const DefaultPositionTimeout = 3 * time.Second

// LocationResolver acquires the user's starting location once: the device
// position when granted, otherwise a fixed default. The point is returned
// immediately and the place name follows asynchronously.
type LocationResolver struct {
	source          ports.PositionSource
	reverse         ports.ReverseGeocoder
	defaultLocation domain.GeoPoint
	timeout         time.Duration
	log             logrus.FieldLogger
}

func NewLocationResolver(
	source ports.PositionSource,
	reverse ports.ReverseGeocoder,
	defaultLocation domain.GeoPoint,
	timeout time.Duration,
	log logrus.FieldLogger,
) *LocationResolver {
	if timeout <= 0 {
		timeout = DefaultPositionTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LocationResolver{
		source:          source,
		reverse:         reverse,
		defaultLocation: defaultLocation,
		timeout:         timeout,
		log:             log,
	}
}

// Acquire resolves the starting location. It never fails: denial, device
// errors, a missing capability and timeouts all yield the default location.
//
// When onLabel is non-nil it is called exactly once, from another goroutine,
// with the reverse geocoded place name or domain.UnknownLocation. ctx bounds
// both the position wait and the reverse lookup.
func (r *LocationResolver) Acquire(ctx context.Context, onLabel func(label string)) domain.ResolvedLocation {
	loc := r.position(ctx)
	obs.LocationResolutions.WithLabelValues(string(loc.Source)).Inc()

	if onLabel != nil {
		go func() {
			label := domain.UnknownLocation
			if r.reverse != nil {
				label = r.reverse.Label(ctx, loc.Point)
			}
			onLabel(label)
		}()
	}

	return loc
}

type positionResult struct {
	point domain.GeoPoint
	err   error
}

func (r *LocationResolver) position(ctx context.Context) domain.ResolvedLocation {
	fallback := domain.ResolvedLocation{Point: r.defaultLocation, Source: domain.SourceFallback}

	if r.source == nil {
		r.log.Info("no position source configured, using default location")
		return fallback
	}

	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The source may ignore ctx; the buffered channel lets it finish late without leaking.
	ch := make(chan positionResult, 1)
	go func() {
		p, err := r.source.Position(pctx)
		ch <- positionResult{point: p, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			r.log.WithError(res.err).Info("device position unavailable, using default location")
			return fallback
		}
		if !res.point.Valid() {
			r.log.WithField("point", res.point.String()).Info("device returned invalid position, using default location")
			return fallback
		}
		return domain.ResolvedLocation{Point: res.point, Source: domain.SourceDevice}
	case <-pctx.Done():
		r.log.WithField("timeout", r.timeout.String()).Info("device position timed out, using default location")
		return fallback
	}
}
