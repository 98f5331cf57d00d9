package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voxnote/errors"
)

// DataResponse wraps successful payloads.
type DataResponse struct {
	Data any `json:"data"`
}

// TranscriptionResponse answers a non-streaming submission. Status lists
// the stage messages in the order they were reported.
type TranscriptionResponse struct {
	Data   any      `json:"data"`
	Status []string `json:"status"`
}

// RespondWithError aborts with the AppError's status and body. Any other
// error becomes INTERNAL_ERROR.
func RespondWithError(c *gin.Context, err error) {
	ae, ok := apperrors.AsAppError(err)
	if !ok {
		ae = apperrors.Internal(err)
	}
	status := ae.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, ae.ToResponse())
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
