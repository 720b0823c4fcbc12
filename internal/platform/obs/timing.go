package obs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Logger receives timing lines. Replaced by the composition root.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// WithRequestID stores a request id for Time to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time logs the duration of an operation when the returned func is called.
// Use as: defer obs.Time(ctx, "op")(&err).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		entry := Logger.WithFields(logrus.Fields{
			"req_id": reqID,
			"op":     name,
			"dur_ms": dur.Milliseconds(),
		})
		if errp != nil && *errp != nil {
			entry.WithError(*errp).Debug("op failed")
			return
		}
		entry.Debug("op done")
	}
}
