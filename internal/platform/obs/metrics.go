package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_requests_total",
		Help: "Upstream geocoding calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	GeocodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocode_request_duration_seconds",
		Help:    "Latency of upstream geocoding calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	LocationResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "location_resolutions_total",
		Help: "Resolved locations by source (device, fallback, search).",
	}, []string{"source"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Locator sessions currently held by the API.",
	})
)

// Outcome labels for GeocodeRequests.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)
