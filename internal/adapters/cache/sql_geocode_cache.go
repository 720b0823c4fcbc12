package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache is a Postgres-backed cache mapping normalized queries to points.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch the cached point for key.
func (s *SQLGeocodeCache) Get(ctx context.Context, key string) (_ domain.GeoPoint, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.sql.Get")(&err)

	if s.DB == nil {
		return domain.GeoPoint{}, false, errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.GeoPoint{}, false, nil
	}

	q := `
	SELECT lat, lon
	FROM geocode_cache
	WHERE query = $1;
	`

	var p domain.GeoPoint
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&p.Lat, &p.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GeoPoint{}, false, nil
	}
	if err != nil {
		return domain.GeoPoint{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return p, true, nil
}

// Store a query -> point mapping. Sentinel points are never stored.
func (s *SQLGeocodeCache) Put(ctx context.Context, key string, p domain.GeoPoint) (err error) {
	defer obs.Time(ctx, "geocode.cache.sql.Put")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert geocode cache: empty query key")
	}
	if !p.Valid() {
		return fmt.Errorf("insert geocode cache %q: invalid point %s", key, p)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (query, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (query) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`, key, p.Lat, p.Lon)
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", key, err)
	}

	return nil
}
