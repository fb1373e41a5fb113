package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ServiceAuth creates middleware that validates the static service bearer
// secret guarding the authority endpoints. Uses constant-time comparison
// to prevent timing attacks.
func ServiceAuth(serviceSecret string) echo.MiddlewareFunc {
	secretBytes := []byte(serviceSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			provided, found := strings.CutPrefix(header, "Bearer ")
			if !found || provided == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing service credentials")
			}
			if subtle.ConstantTimeCompare([]byte(provided), secretBytes) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid service credentials")
			}
			return next(c)
		}
	}
}
