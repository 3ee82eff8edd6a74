package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/sessions"
)

// RegisterRoutes registers the admin auth routes and returns the middleware
// the rest of the API authenticates with.
func RegisterRoutes(e *echo.Echo, authService *Service, sessionStore *sessions.Store, limiter *LoginLimiter) *Middleware {
	m := NewMiddleware(authService)
	h := &handler{
		authService:  authService,
		sessionStore: sessionStore,
	}

	g := e.Group("/auth")
	g.POST("/login", h.login, limiter.Middleware)
	g.POST("/logout", h.logout, m.AuthenticateOptional)
	g.GET("/me", h.me, m.Authenticate)
	g.GET("/session", h.session, m.Authenticate, m.RequireAdmin)
	g.POST("/password", h.changePassword, m.Authenticate, m.RequireAdmin)

	return m
}
