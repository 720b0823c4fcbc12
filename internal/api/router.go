package api

import (
	"member-locator-service/internal/adapters/position"
	"member-locator-service/internal/api/handlers"
	"member-locator-service/internal/ports"
	"member-locator-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Sessions   *services.SessionStore
	NewLocator func(src ports.PositionSource) *services.Locator
	Members    ports.MemberRepository
	GeoIP      position.CityLookup
	RankLimit  int
	Log        logrus.FieldLogger
}

// NewRouter wires HTTP handlers with their dependencies and returns the engine.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}

	sessionHandler := &handlers.SessionHandler{
		Store:      d.Sessions,
		NewLocator: d.NewLocator,
		GeoIP:      d.GeoIP,
		Log:        d.Log,
	}
	nearestHandler := &handlers.NearestHandler{
		Members:      d.Members,
		DefaultLimit: d.RankLimit,
		Log:          d.Log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/nearest", nearestHandler.Nearest)

	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.GET("/:id/events", sessionHandler.Events)
		sessions.POST("/:id/search", sessionHandler.Search)
		sessions.DELETE("/:id", sessionHandler.Delete)
	}

	return r
}
