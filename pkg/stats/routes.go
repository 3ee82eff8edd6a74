package stats

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	statsService := NewService(db)

	h := &handler{
		statsService: statsService,
	}

	g := e.Group("/stats")
	g.GET("/trending", h.trending)
	g.GET("/top-subjects", h.topSubjects)
	g.GET("/dashboard", h.dashboard, authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	g.GET("/history", h.history, authMiddleware.Authenticate, authMiddleware.RequireAdmin)

	return statsService
}
