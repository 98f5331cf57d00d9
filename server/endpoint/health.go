package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxnote/observability"
	"github.com/kbukum/voxnote/version"
)

// HealthResponse is the body served by Health.
type HealthResponse struct {
	*observability.ServiceHealth
	Timestamp string `json:"timestamp"`
}

// Health returns a handler that aggregates the given checkers. A degraded
// component keeps the service at 200; a down component turns it into 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.Check(c.Request.Context(), serviceName, version.Get().Version, checkers...)

		httpStatus := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, HealthResponse{
			ServiceHealth: sh,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
