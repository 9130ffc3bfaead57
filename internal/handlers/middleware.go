package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/monban-project/monban/internal/services"
	"github.com/monban-project/monban/internal/services/authorization"
)

// securityContextKey is where the per-request Security snapshot is stored
// in the echo context.
const securityContextKey = "monban.security"

// RequireAuth resolves the Bearer token to the caller's principal and grant
// snapshot and stores it in the request context. Requests without a valid
// token are rejected with 401 before reaching a handler.
func RequireAuth(auth services.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := ""
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}

			sec, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return httpError(err)
			}

			c.Set(securityContextKey, sec)
			return next(c)
		}
	}
}

// securityFrom returns the Security snapshot stored by RequireAuth, or nil.
// Handlers pass it explicitly to the services; a nil value is rejected by
// the enforcement point as unauthenticated.
func securityFrom(c echo.Context) *authorization.Security {
	sec, _ := c.Get(securityContextKey).(*authorization.Security)
	return sec
}
