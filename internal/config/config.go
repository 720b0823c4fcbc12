package config

import (
	"errors"
	"fmt"
	"member-locator-service/internal/domain"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server composition root needs.
type Config struct {
	Port             string
	DatabaseURL      string
	RedisAddr        string
	RedisCacheTTL    time.Duration
	GeoIPDBPath      string
	PostcodesBaseURL string
	NominatimBaseURL string
	UserAgent        string
	DefaultLocation  domain.GeoPoint
	PositionTimeout  time.Duration
	RankLimit        int
	SessionTTL       time.Duration
	LogLevel         string
	SeedPath         string
}

// LoadDotEnv loads a .env file if present. A missing file is not an error.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", key, raw, err)
	}
	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration: %w", key, raw, err)
	}
	return v, nil
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Port:             Get("PORT", "8080"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		RedisAddr:        Get("REDIS_ADDR", ""),
		GeoIPDBPath:      Get("GEOIP_DB_PATH", ""),
		PostcodesBaseURL: Get("POSTCODES_BASE_URL", "https://api.postcodes.io"),
		NominatimBaseURL: Get("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:        Get("USER_AGENT", "member-locator-service/1.0"),
		LogLevel:         Get("LOG_LEVEL", "info"),
		SeedPath:         Get("SEED_PATH", "data/seeds/members.json"),
	}

	var err error
	var errs []error

	if cfg.DefaultLocation.Lat, err = getFloat("DEFAULT_LAT", 51.509865); err != nil {
		errs = append(errs, err)
	}
	if cfg.DefaultLocation.Lon, err = getFloat("DEFAULT_LON", -0.118092); err != nil {
		errs = append(errs, err)
	}
	if cfg.PositionTimeout, err = getDuration("POSITION_TIMEOUT", 3*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RedisCacheTTL, err = getDuration("REDIS_CACHE_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RankLimit, err = getInt("RANK_LIMIT", 6); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	if !cfg.DefaultLocation.Valid() {
		return Config{}, fmt.Errorf("config: default location %s is not a valid point", cfg.DefaultLocation)
	}
	if cfg.PositionTimeout <= 0 {
		return Config{}, errors.New("config: POSITION_TIMEOUT must be positive")
	}
	if cfg.RankLimit < 1 {
		return Config{}, errors.New("config: RANK_LIMIT must be at least 1")
	}

	return cfg, nil
}
