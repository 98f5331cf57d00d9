package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/validation"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestID makes sure every request carries a UUID request ID. An incoming
// X-Request-Id is kept when it is a UUID; anything else is replaced. The ID is
// echoed on the response and stored in the request context for logging.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if !validation.IsUUID(id) {
				id = uuid.NewString()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
		})
	}
}
