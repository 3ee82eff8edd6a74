package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelf/pkg/errcodes"
)

const principalKey = "principal"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate requires a valid token from the session cookie or a bearer
// Authorization header, and that its subject still exists.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c)
		if token == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		exists, err := m.authService.principalExists(c.Request().Context(), claims)
		if err != nil {
			return err
		}
		if !exists {
			return errcodes.Unauthorized("Account not found or inactive")
		}

		c.Set(principalKey, &Principal{
			ID:       claims.UserID,
			Username: claims.Username,
			Kind:     claims.Kind,
		})

		return next(c)
	}
}

// RequireAdmin must run after Authenticate.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errcodes.Unauthorized("Authentication required")
		}
		if p.Kind != KindAdmin {
			return errcodes.Forbidden("This action")
		}
		return next(c)
	}
}

// RequireReader must run after Authenticate.
func (m *Middleware) RequireReader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errcodes.Unauthorized("Authentication required")
		}
		if p.Kind != KindReader {
			return errcodes.Forbidden("This action")
		}
		return next(c)
	}
}

func PrincipalFromContext(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthenticateOptional attaches the principal when a valid token is present
// and never rejects the request.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c)
		if token == "" {
			return next(c)
		}
		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			return next(c)
		}
		c.Set(principalKey, &Principal{
			ID:       claims.UserID,
			Username: claims.Username,
			Kind:     claims.Kind,
		})
		return next(c)
	}
}
