package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxnote/version"
)

// Version answers with the build info linked into the binary.
func Version() gin.HandlerFunc {
	info := version.Get()
	return func(c *gin.Context) { c.JSON(http.StatusOK, info) }
}
