package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todo-service/internal/apperr"
)

// fail writes err as {"detail": message} with the status of its code.
// Uncoded errors are logged and reported as a generic 500.
func (h *handler) fail(c *gin.Context, err error) {
	status, detail := h.describe(c, err)
	c.JSON(status, gin.H{"detail": detail})
}

// abort is fail for middleware.
func (h *handler) abort(c *gin.Context, err error) {
	status, detail := h.describe(c, err)
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func (h *handler) describe(c *gin.Context, err error) (int, string) {
	var coded *apperr.Error
	if !errors.As(err, &coded) || coded.Code == apperr.CodeUnknown {
		h.logger.Error("internal error", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		return http.StatusInternalServerError, "Internal server error"
	}

	status := coded.Code.HTTPStatus()
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	return status, coded.Message
}
