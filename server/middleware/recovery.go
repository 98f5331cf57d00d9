package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/logger"
)

// Recovery returns middleware that turns a handler panic into an
// INTERNAL_ERROR response and logs the stack.
func Recovery(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("Panic recovered", map[string]interface{}{
					logger.FieldError: fmt.Sprintf("%v", rec),
					"stack":           string(debug.Stack()),
					"path":            r.URL.Path,
					"method":          r.Method,
				})
				appErr := apperrors.Internal(fmt.Errorf("panic: %v", rec))
				writeError(w, appErr.HTTPStatus, appErr.ToResponse())
			}()
			next.ServeHTTP(w, r)
		})
	}
}
