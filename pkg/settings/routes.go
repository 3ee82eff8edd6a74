package settings

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/auth"
)

func RegisterRoutes(e *echo.Echo, store *Store, authMiddleware *auth.Middleware) {
	h := &handler{store: store}

	g := e.Group("/settings")
	g.GET("", h.retrieve)
	g.PUT("", h.update, authMiddleware.Authenticate, authMiddleware.RequireAdmin)
}
