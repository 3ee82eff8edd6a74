package activity

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the signed-in reader's routes under /me and the
// public view counter.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	activityService := NewService(db)

	h := &handler{
		activityService: activityService,
	}

	me := e.Group("/me", authMiddleware.Authenticate, authMiddleware.RequireReader)
	me.GET("/watchlist", h.watchlist)
	me.POST("/watchlist/:bookID", h.addToWatchlist)
	me.DELETE("/watchlist/:bookID", h.removeFromWatchlist)
	me.POST("/reads/:bookID", h.recordRead)
	me.GET("/history", h.history)
	me.GET("/stats", h.stats)
	me.POST("/sessions", h.startSession)
	me.POST("/sessions/:id/end", h.endSession)

	e.POST("/books/:id/views", h.recordView, authMiddleware.AuthenticateOptional)

	return activityService
}
