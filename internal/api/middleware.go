package api

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/model"
)

const contextUserKey = "user"

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// requireUser resolves the bearer token to an active user and stores it on
// the context.
func (h *handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			h.abort(c, apperr.ErrInvalidToken)
			return
		}

		u, err := h.auth.Resolve(c.Request.Context(), raw)
		if err != nil {
			h.abort(c, err)
			return
		}

		c.Set(contextUserKey, u)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// currentUser returns the user set by requireUser.
func currentUser(c *gin.Context) *model.User {
	return c.MustGet(contextUserKey).(*model.User)
}
