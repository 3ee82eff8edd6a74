package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/shelf/pkg/activity"
	"github.com/shishobooks/shelf/pkg/auth"
	"github.com/shishobooks/shelf/pkg/binder"
	"github.com/shishobooks/shelf/pkg/books"
	"github.com/shishobooks/shelf/pkg/config"
	"github.com/shishobooks/shelf/pkg/database"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/sessions"
	"github.com/shishobooks/shelf/pkg/settings"
	"github.com/shishobooks/shelf/pkg/stats"
	"github.com/shishobooks/shelf/pkg/testutils"
	"github.com/shishobooks/shelf/pkg/users"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := NewEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// NewEcho builds the routed API without binding it to an address.
func NewEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	sessionStore := sessions.NewStore(cfg.SessionFilePath)
	settingsStore := settings.NewStore(cfg.SettingsFilePath)
	limiter := auth.NewLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst)

	authService := auth.NewService(db, cfg.JWTSecret)
	authMiddleware := auth.RegisterRoutes(e, authService, sessionStore, limiter)

	userService := users.RegisterRoutes(e, db, authService, authMiddleware, limiter)
	books.RegisterRoutes(e, db, settingsStore, authMiddleware)
	activity.RegisterRoutes(e, db, authMiddleware)
	stats.RegisterRoutes(e, db, authMiddleware)
	settings.RegisterRoutes(e, settingsStore, authMiddleware)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db, userService)
	}

	echo.NotFoundHandler = notFoundHandler
	errHandler := errcodes.NewHandler()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		errHandler.Handle(database.ClassifyError(err), c)
	}

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
