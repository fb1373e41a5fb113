package handler

import (
	"net/http"

	"idman-gateway/middleware"

	"github.com/labstack/echo/v4"
)

// HandleMe returns the principal the gate bound to the request context.
// Only reachable behind the gate, so a missing principal is a wiring
// defect.
func HandleMe(c echo.Context) error {
	principal := middleware.PrincipalFrom(c.Request().Context())
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, toPrincipalResponse(principal))
}
