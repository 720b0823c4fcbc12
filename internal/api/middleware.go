package api

import (
	"member-locator-service/internal/platform/obs"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags the request context with an id for obs.Time and logs
// end-to-end duration and response size once the handler chain returns.
func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(obs.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		// Size is -1 until something is written.
		bytes := max(c.Writer.Size(), 0)

		log.WithFields(logrus.Fields{
			"req_id": reqID,
			"method": c.Request.Method,
			"path":   c.Request.URL.RequestURI(),
			"status": c.Writer.Status(),
			"bytes":  bytes,
			"dur_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	}
}
