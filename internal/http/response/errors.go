package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

// RespondServiceError maps a service error onto its status and stable code.
// Messages of unclassified failures are not echoed to the client.
func RespondServiceError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	code := apierr.CodeOf(err)
	if code == apierr.CodeInternal {
		RespondError(c, status, code, errors.New(http.StatusText(status)))
		return
	}
	RespondError(c, status, code, errors.New(apierr.MessageOf(err)))
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: message, Code: code},
	})
}
