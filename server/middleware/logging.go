package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/voxnote/logger"
)

// slowRequest marks requests worth a look. Transcriptions of long audio
// legitimately take minutes.
const slowRequest = 5 * time.Minute

var quietPaths = map[string]bool{
	"/healthz": true,
	"/version": true,
}

// RequestLogger logs one line per request once the handler returns: 5xx at
// error, 4xx at warn, the rest at debug. Health and version checks are not
// logged.
func RequestLogger(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.Status(),
				"bytes", sw.bytes,
				logger.FieldDuration, duration.Milliseconds(),
			)
			if duration > slowRequest {
				fields["slow"] = true
			}
			logByStatus(log.WithContext(r.Context()), fields, sw.Status())
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
