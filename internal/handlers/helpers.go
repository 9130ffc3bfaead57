package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monban-project/monban/internal/repositories"
	"github.com/monban-project/monban/internal/services"
	"github.com/monban-project/monban/internal/services/authorization"
)

// === Shared helper functions for all handlers ===

// httpError maps engine and service errors to HTTP responses. Contract
// violations are programming errors and surface as 500s; every denial path
// stays a denial (nothing is downgraded to success).
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, authorization.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case authorization.IsAccessDenied(err):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case authorization.IsContractViolation(err):
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
