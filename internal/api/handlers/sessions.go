package handlers

import (
	"errors"
	"io"
	"member-locator-service/internal/adapters/position"
	"member-locator-service/internal/api/dto"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/ports"
	"member-locator-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Message returned for every failed search, whatever the cause.
const noSuchLocation = "no such location"

type SessionHandler struct {
	Store *services.SessionStore
	// NewLocator builds an unstarted Locator reading positions from src.
	NewLocator func(src ports.PositionSource) *services.Locator
	// GeoIP is optional; when set it backs up a missing client position.
	GeoIP position.CityLookup
	Log   logrus.FieldLogger
}

// Create starts a Locator for a new display and returns its first view.
// The label in that view may still be empty; it arrives on the event stream.
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		writeError(c, http.StatusBadRequest, "lat and lon must be given together")
		return
	}

	client := position.Client{Denied: req.Denied}
	if req.Lat != nil {
		client.Point = &domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
	}

	var src ports.PositionSource = client
	if h.GeoIP != nil {
		src = position.FirstOf(client, position.GeoIP{Reader: h.GeoIP, IP: c.ClientIP()})
	}

	l := h.NewLocator(src)
	view, err := l.Start(c.Request.Context())
	if err != nil {
		l.Close()
		h.Log.WithError(err).Error("start locator failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	id := h.Store.Add(l)
	c.JSON(http.StatusCreated, dto.CreateSessionResponse{
		SessionID: id,
		View:      dto.NewViewResponse(view),
	})
}

func (h *SessionHandler) locator(c *gin.Context) (*services.Locator, bool) {
	l, ok := h.Store.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "session not found")
		return nil, false
	}
	return l, true
}

func (h *SessionHandler) Get(c *gin.Context) {
	l, ok := h.locator(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewViewResponse(l.View()))
}

// Search runs a user query against the session. All lookup failures map to
// a single 404 so the display can show one message.
func (h *SessionHandler) Search(c *gin.Context) {
	l, ok := h.locator(c)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	view, err := l.Search(c.Request.Context(), req.Query)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NewViewResponse(view))
	case errors.Is(err, services.ErrSearchInProgress):
		writeError(c, http.StatusConflict, "search already in progress")
	case errors.Is(err, services.ErrClosed):
		writeError(c, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrProvider),
		errors.Is(err, domain.ErrEmptyQuery):
		writeError(c, http.StatusNotFound, noSuchLocation)
	default:
		h.Log.WithError(err).Error("search failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

// Events streams a "view" event on every change until the client leaves or
// the session is torn down.
func (h *SessionHandler) Events(c *gin.Context) {
	id := c.Param("id")
	l, ok := h.locator(c)
	if !ok {
		return
	}

	updates, cancel := l.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case v, ok := <-updates:
			if !ok {
				return false
			}
			h.Store.Get(id)
			c.SSEvent("view", dto.NewViewResponse(v))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if !h.Store.Remove(c.Param("id")) {
		writeError(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}
