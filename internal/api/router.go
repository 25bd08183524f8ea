// Package api exposes the todo service over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nhle/todo-service/internal/auth"
	"github.com/nhle/todo-service/internal/todo"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "todo-api"

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Deps are the services the router dispatches to.
type Deps struct {
	Auth           *auth.Service
	Todos          *todo.Service
	Logger         *log.Logger
	AllowedOrigins []string
}

type handler struct {
	auth   *auth.Service
	todos  *todo.Service
	logger *log.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{auth: deps.Auth, todos: deps.Todos, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.GET("/", h.root)
	r.GET("/health", h.health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.loginForm)
		authGroup.POST("/login/json", h.loginJSON)

		authed := authGroup.Group("", h.requireUser())
		authed.GET("/me", h.me)
		authed.PUT("/me", h.updateMe)
		authed.POST("/change-password", h.changePassword)
		authed.POST("/refresh", h.refresh)
	}

	todos := r.Group("/todos", h.requireUser())
	{
		todos.POST("", h.createTodo)
		todos.GET("", h.listTodos)
		todos.GET("/stats/overview", h.todoStats)
		todos.GET("/overdue", h.overdueTodos)
		todos.GET("/due-soon", h.dueSoonTodos)
		todos.GET("/:id", h.getTodo)
		todos.PUT("/:id", h.updateTodo)
		todos.DELETE("/:id", h.deleteTodo)
		todos.POST("/:id/complete", h.completeTodo)
		todos.POST("/:id/pending", h.reopenTodo)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Todo API",
		"version": Version,
		"endpoints": gin.H{
			"auth":   "/auth",
			"todos":  "/todos",
			"health": "/health",
		},
	})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": ServiceName})
}
