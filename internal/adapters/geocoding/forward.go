package geocoding

import (
	"context"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"member-locator-service/internal/ports"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// QueryKind tells which upstream provider a query is routed to.
type QueryKind int

const (
	QueryFreeText QueryKind = iota
	QueryPostcode
)

func (k QueryKind) String() string {
	if k == QueryPostcode {
		return "postcode"
	}
	return "free_text"
}

// sharedLookupTimeout bounds a collapsed upstream lookup, which no caller can cancel.
const sharedLookupTimeout = 30 * time.Second

var postcodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,4} [A-Za-z0-9]{1,4}$`)

// ClassifyQuery reports whether q looks like a UK postcode
// (1-4 alphanumerics, one space, 1-4 alphanumerics).
func ClassifyQuery(q string) QueryKind {
	if postcodePattern.MatchString(q) {
		return QueryPostcode
	}
	return QueryFreeText
}

// PostcodeLookup resolves an exact postcode.
type PostcodeLookup interface {
	LookupPostcode(ctx context.Context, postcode string) (domain.GeoPoint, error)
}

// PlaceSearcher resolves free text.
type PlaceSearcher interface {
	Search(ctx context.Context, text string) (domain.GeoPoint, error)
}

// ForwardGeocoder implements ports.ForwardGeocoder by routing postcodes and
// free text to their providers.
//
// It coordinates:
//   - Query classification and normalization
//   - Optional persistent caching of resolved points
//   - Collapsing identical in-flight lookups
//
// The geocoder holds no per-query state and is safe for concurrent use.
type ForwardGeocoder struct {
	postcodes PostcodeLookup
	places    PlaceSearcher
	cache     ports.GeocodeCache
	log       logrus.FieldLogger
	group     singleflight.Group
}

func NewForwardGeocoder(
	postcodes PostcodeLookup,
	places PlaceSearcher,
	cache ports.GeocodeCache,
	log logrus.FieldLogger,
) *ForwardGeocoder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ForwardGeocoder{
		postcodes: postcodes,
		places:    places,
		cache:     cache,
		log:       log,
	}
}

// normalize collapses whitespace so "  New   York " and "New York" share a key.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Resolve translates query into a point without touching any shared display state.
func (g *ForwardGeocoder) Resolve(ctx context.Context, query string) (_ domain.GeoPoint, err error) {
	defer obs.Time(ctx, "geocode.Resolve")(&err)

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.GeoPoint{}, domain.ErrEmptyQuery
	}

	kind := ClassifyQuery(trimmed)

	var key, lookup string
	switch kind {
	case QueryPostcode:
		// Casers are stateful and must not be shared between goroutines.
		lookup = cases.Upper(language.BritishEnglish).String(trimmed)
		key = "postcode:" + lookup
	default:
		lookup = normalize(trimmed)
		key = "text:" + cases.Fold().String(lookup)
	}

	// The shared lookup outlives any single caller; each caller stops waiting
	// when its own ctx ends.
	ch := g.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return g.resolve(sctx, kind, key, lookup)
	})

	select {
	case <-ctx.Done():
		return domain.GeoPoint{}, fmt.Errorf("resolve %s %q: %w: %w", kind, trimmed, domain.ErrProvider, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.GeoPoint{}, fmt.Errorf("resolve %s %q: %w", kind, trimmed, res.Err)
		}
		return res.Val.(domain.GeoPoint), nil
	}
}

func (g *ForwardGeocoder) resolve(ctx context.Context, kind QueryKind, key, lookup string) (domain.GeoPoint, error) {
	if g.cache != nil {
		p, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			g.log.WithError(err).WithField("key", key).Warn("geocode cache read failed")
		} else if ok && p.Valid() {
			return p, nil
		}
	}

	var (
		p   domain.GeoPoint
		err error
	)
	switch kind {
	case QueryPostcode:
		if g.postcodes == nil {
			return domain.GeoPoint{}, fmt.Errorf("no postcode provider: %w", domain.ErrProvider)
		}
		p, err = g.postcodes.LookupPostcode(ctx, lookup)
	default:
		if g.places == nil {
			return domain.GeoPoint{}, fmt.Errorf("no search provider: %w", domain.ErrProvider)
		}
		p, err = g.places.Search(ctx, lookup)
	}
	if err != nil {
		return domain.GeoPoint{}, err
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, key, p); err != nil {
			g.log.WithError(err).WithField("key", key).Warn("geocode cache write failed")
		}
	}

	return p, nil
}
