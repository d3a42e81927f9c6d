package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/placeshare-backend/internal/platform/apierr"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RespondError classifies err and writes it, unless a response has already
// been started, in which case the error is only recorded on the context.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	if c.Writer.Written() {
		return
	}
	e := apierr.FromError(err)
	c.AbortWithStatusJSON(e.Status, ErrorBody{Message: e.Error(), Code: e.Code})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
