package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DEFAULT_LAT", "DEFAULT_LON", "POSITION_TIMEOUT", "RANK_LIMIT", "SESSION_TTL", "REDIS_CACHE_TTL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.InDelta(t, 51.509865, cfg.DefaultLocation.Lat, 1e-9)
	assert.InDelta(t, -0.118092, cfg.DefaultLocation.Lon, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.PositionTimeout)
	assert.Equal(t, 6, cfg.RankLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_LAT", "53.4808")
	t.Setenv("DEFAULT_LON", "-2.2426")
	t.Setenv("POSITION_TIMEOUT", "1500ms")
	t.Setenv("RANK_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 53.4808, cfg.DefaultLocation.Lat, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, cfg.PositionTimeout)
	assert.Equal(t, 10, cfg.RankLimit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"non numeric lat", "DEFAULT_LAT", "north"},
		{"bad duration", "POSITION_TIMEOUT", "soon"},
		{"zero limit", "RANK_LIMIT", "0"},
		{"sentinel default", "DEFAULT_LAT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if tt.key == "DEFAULT_LAT" && tt.value == "0" {
				t.Setenv("DEFAULT_LON", "0")
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("SOME_KEY", "   ")
	assert.Equal(t, "fb", Get("SOME_KEY", "fb"))
	t.Setenv("SOME_KEY", "value")
	assert.Equal(t, "value", Get("SOME_KEY", "fb"))
}
