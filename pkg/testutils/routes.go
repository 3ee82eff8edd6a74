// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/users"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB, userService *users.Service) {
	h := &handler{db: db, userService: userService}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.POST("/books", h.createBooks)
	test.DELETE("/catalog", h.resetCatalog)
}
