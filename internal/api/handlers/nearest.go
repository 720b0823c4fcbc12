package handlers

import (
	"member-locator-service/internal/api/dto"
	"member-locator-service/internal/domain"
	"member-locator-service/internal/ports"
	"member-locator-service/internal/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxNearestLimit = 50

type NearestHandler struct {
	Members      ports.MemberRepository
	DefaultLimit int
	Log          logrus.FieldLogger
}

// Nearest ranks the current member snapshot against an arbitrary point
// without creating a session.
func (h *NearestHandler) Nearest(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	point := domain.GeoPoint{Lat: lat, Lon: lon}
	if errLat != nil || errLon != nil || !point.Valid() {
		writeError(c, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}

	limit := h.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxNearestLimit {
			writeError(c, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	members, err := h.Members.ListMembers(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Error("list members failed")
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	ranked := services.RankMembers(point, members, limit)
	c.JSON(http.StatusOK, dto.NearestResponse{
		Point:   dto.PointResponse{Lat: point.Lat, Lon: point.Lon},
		Members: dto.NewMembersResponse(ranked),
	})
}
