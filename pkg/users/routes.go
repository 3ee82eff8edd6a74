package users

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers reader signup/login and the admin user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authService *auth.Service, authMiddleware *auth.Middleware, limiter *auth.LoginLimiter) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
		authService: authService,
	}

	users := e.Group("/users")

	users.POST("/signup", h.signup)
	users.POST("/login", h.login, limiter.Middleware)

	// Account management is admin only.
	admin := users.Group("", authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	admin.GET("", h.list)
	admin.GET("/:id", h.retrieve)
	admin.PATCH("/:id", h.update)
	admin.DELETE("/:id", h.delete)

	return userService
}
