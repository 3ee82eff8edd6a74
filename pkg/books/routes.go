package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/shishobooks/shelf/pkg/settings"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the catalog routes. Reads are public; writes are
// admin only.
func RegisterRoutes(e *echo.Echo, db *bun.DB, settingsStore *settings.Store, authMiddleware *auth.Middleware) *Service {
	bookService := NewService(db)

	h := &handler{
		bookService:   bookService,
		settingsStore: settingsStore,
	}

	g := e.Group("/books")
	g.GET("", h.list)
	g.GET("/recent", h.recent)
	g.GET("/suggestions", h.suggestions)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	g.PUT("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireAdmin)

	e.GET("/subjects", h.subjects)
	e.GET("/subjects/:subject/books", h.subjectBooks)
	e.GET("/publishers", h.publishers)

	return bookService
}
