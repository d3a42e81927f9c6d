package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/placeshare-backend/internal/http/response"
	"github.com/yungbote/placeshare-backend/internal/platform/apierr"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

// ErrorHandler emits errors a handler recorded with c.Error but did not
// write. A response that has already started is left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		e := apierr.FromError(c.Errors.Last().Err)
		c.AbortWithStatusJSON(e.Status, response.ErrorBody{Message: e.Error(), Code: e.Code})
	}
}

// Recovery turns a handler panic into a 500 with the default message.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("Recovered from panic", "path", c.Request.URL.Path, "panic", recovered)
		}
		if c.Writer.Written() {
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorBody{
			Message: apierr.DefaultMessage,
			Code:    "internal",
		})
	})
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.RespondError(c, apierr.WithMessage(http.StatusNotFound, "not_found", "Could not find this route."))
	}
}
