package cache

import (
	"context"
	"errors"
	"fmt"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeCache keeps query -> point mappings in Redis with a TTL.
// Values are stored as "lat,lon".
type RedisGeocodeCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisGeocodeCache(client redis.UniversalClient, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

func (c *RedisGeocodeCache) Get(ctx context.Context, key string) (_ domain.GeoPoint, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.Get")(&err)

	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.GeoPoint{}, false, nil
	}
	if err != nil {
		return domain.GeoPoint{}, false, fmt.Errorf("get redis geocode cache %q: %w", key, err)
	}

	p, err := parsePoint(raw)
	if err != nil {
		return domain.GeoPoint{}, false, fmt.Errorf("get redis geocode cache %q: %w", key, err)
	}

	return p, true, nil
}

func (c *RedisGeocodeCache) Put(ctx context.Context, key string, p domain.GeoPoint) (err error) {
	defer obs.Time(ctx, "geocode.cache.redis.Put")(&err)

	if strings.TrimSpace(key) == "" {
		return errors.New("put redis geocode cache: empty key")
	}
	if !p.Valid() {
		return fmt.Errorf("put redis geocode cache %q: invalid point %s", key, p)
	}

	val := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
	if err := c.client.Set(ctx, redisKeyPrefix+key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("put redis geocode cache %q: %w", key, err)
	}

	return nil
}

func parsePoint(raw string) (domain.GeoPoint, error) {
	latStr, lonStr, ok := strings.Cut(raw, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("malformed value %q", raw)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("malformed latitude %q: %w", latStr, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("malformed longitude %q: %w", lonStr, err)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
