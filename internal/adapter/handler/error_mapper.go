package handler

import (
	"errors"
	"net/http"

	"idman-gateway/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
// Auth failures collapse into one shape so callers cannot distinguish them.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrServiceNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")

	case errors.Is(err, domain.ErrAuthorityUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "token authority unavailable")

	case errors.Is(err, domain.ErrNotImplemented):
		return echo.NewHTTPError(http.StatusNotImplemented, "operation not supported by the active provider")

	case errors.Is(err, domain.ErrCredentialMismatch),
		errors.Is(err, domain.ErrTokenGeneration),
		errors.Is(err, domain.ErrSigningSecretWeak):
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
