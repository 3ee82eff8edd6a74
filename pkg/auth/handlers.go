package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/shishobooks/shelf/pkg/errcodes"
	"github.com/shishobooks/shelf/pkg/sessions"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "shelf_session"
	// CookieMaxAge is how long the cookie is valid.
	CookieMaxAge = 7 * 24 * time.Hour // 7 days
)

type handler struct {
	authService  *Service
	sessionStore *sessions.Store
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		return err
	}

	principal := Principal{ID: admin.ID, Username: admin.Username, Kind: KindAdmin}
	token, err := IssueSession(c, h.authService, principal)
	if err != nil {
		return err
	}

	if _, err := h.sessionStore.Save(admin.ID, admin.Username); err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		MeResponse: MeResponse{ID: admin.ID, Username: admin.Username, Kind: KindAdmin},
		Token:      token,
	})
}

func (h *handler) logout(c echo.Context) error {
	ClearSessionCookie(c)

	p, ok := PrincipalFromContext(c)
	if ok && p.Kind == KindAdmin {
		if err := h.sessionStore.Clear(); err != nil {
			echologger.FromEchoContext(c).Err(err).Warn("failed to clear admin session")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *handler) me(c echo.Context) error {
	p, ok := PrincipalFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	return c.JSON(http.StatusOK, MeResponse{ID: p.ID, Username: p.Username, Kind: p.Kind})
}

// session reports the admin sign-in recorded in the session file.
func (h *handler) session(c echo.Context) error {
	session := h.sessionStore.Load(c.Request().Context())
	if session == nil {
		return c.JSON(http.StatusOK, SessionResponse{LoggedIn: false})
	}

	return c.JSON(http.StatusOK, SessionResponse{
		LoggedIn:  true,
		AdminID:   session.AdminID,
		Username:  session.Username,
		CreatedAt: &session.CreatedAt,
	})
}

func (h *handler) changePassword(c echo.Context) error {
	ctx := c.Request().Context()

	p, ok := PrincipalFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := ChangePasswordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.NewPassword != params.ConfirmPassword {
		return errcodes.ValidationError("New passwords do not match")
	}

	if err := h.authService.ChangePassword(ctx, p.ID, params.CurrentPassword, params.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// IssueSession signs a token for p and sets it as an HTTP-only cookie. The
// token is also returned for clients that prefer a bearer header.
func IssueSession(c echo.Context, svc *Service, p Principal) (string, error) {
	token, err := svc.GenerateToken(p)
	if err != nil {
		return "", errors.WithStack(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecure(c echo.Context) bool {
	return c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https"
}
