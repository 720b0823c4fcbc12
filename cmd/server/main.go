package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"member-locator-service/internal/adapters/cache"
	"member-locator-service/internal/adapters/geocoding"
	"member-locator-service/internal/adapters/position"
	"member-locator-service/internal/adapters/repositories"
	"member-locator-service/internal/api"
	"member-locator-service/internal/config"
	"member-locator-service/internal/platform/db"
	"member-locator-service/internal/platform/logging"
	"member-locator-service/internal/platform/obs"
	"member-locator-service/internal/ports"
	"member-locator-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, postcodes.io, Nominatim, GeoIP)
// behind ports and starts the HTTP server.
func main() {
	hasDotEnv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := logging.New(cfg.LogLevel)
	obs.Logger = log
	if !hasDotEnv {
		log.Info("no .env file found (using environment variables)")
	}

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		defer database.Close()
	}

	members, err := newMemberRepository(database, cfg.SeedPath, log)
	if err != nil {
		log.WithError(err).Fatal("member repository")
	}

	geocodeCache, closeCache := newGeocodeCache(cfg, database, log)
	defer closeCache()

	opts := []geocoding.Option{geocoding.WithUserAgent(cfg.UserAgent)}
	postcodes := geocoding.NewPostcodesClient(cfg.PostcodesBaseURL, opts...)
	nominatim := geocoding.NewNominatimClient(cfg.NominatimBaseURL, opts...)
	forward := geocoding.NewForwardGeocoder(postcodes, nominatim, geocodeCache, log)
	reverse := geocoding.NewLabeler(nominatim, log)

	deps := api.Deps{
		Members:   members,
		RankLimit: cfg.RankLimit,
		Log:       log,
	}

	geoip, err := position.OpenGeoIP(cfg.GeoIPDBPath)
	if err != nil {
		log.WithError(err).Warn("geoip disabled")
	}
	if geoip != nil {
		defer geoip.Close()
		deps.GeoIP = geoip
	}

	deps.NewLocator = func(src ports.PositionSource) *services.Locator {
		resolver := services.NewLocationResolver(src, reverse, cfg.DefaultLocation, cfg.PositionTimeout, log)
		return services.NewLocator(resolver, forward, members, cfg.RankLimit, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Sessions = services.NewSessionStore(cfg.SessionTTL, log)
	go deps.Sessions.Run(ctx, time.Minute)

	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(deps)

	// No WriteTimeout: the event stream is long-lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	// Closing sessions ends open event streams so Shutdown can drain.
	deps.Sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exiting")
}

// newMemberRepository prefers Postgres; without a database the seed file is
// served from memory.
func newMemberRepository(database *sql.DB, seedPath string, log logrus.FieldLogger) (ports.MemberRepository, error) {
	if database == nil {
		log.WithField("path", seedPath).Info("no DATABASE_URL, serving members from seed file")
		return repositories.LoadFileMemberRepository(seedPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(ctx, database); err != nil {
		return nil, fmt.Errorf("member repository: %w", err)
	}
	if _, err := os.Stat(seedPath); err == nil {
		n, err := repositories.SeedFromJSON(ctx, database, seedPath)
		if err != nil {
			return nil, fmt.Errorf("member repository: %w", err)
		}
		log.WithField("members", n).Info("seeded members")
	}

	return repositories.NewPostgresMemberRepository(database), nil
}

// newGeocodeCache picks Redis when configured and reachable, then Postgres,
// then no cache at all.
func newGeocodeCache(cfg config.Config, database *sql.DB, log logrus.FieldLogger) (ports.GeocodeCache, func()) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err := client.Ping(ctx).Err()
		if err == nil {
			log.WithField("addr", cfg.RedisAddr).Info("using redis geocode cache")
			return cache.NewRedisGeocodeCache(client, cfg.RedisCacheTTL), func() { client.Close() }
		}
		log.WithError(err).Warn("redis unreachable, falling back")
		client.Close()
	}

	if database != nil {
		return cache.NewSQLGeocodeCache(database), func() {}
	}

	return nil, func() {}
}
