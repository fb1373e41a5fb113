package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"idman-gateway/internal/domain"

	"github.com/labstack/echo/v4"
)

// TokenCookieName is the cookie the gate falls back to when no bearer
// header is present.
const TokenCookieName = "idman-token"

// TokenValidator authenticates a bearer token for a service.
type TokenValidator interface {
	Execute(ctx context.Context, token, serviceID string) (*domain.Principal, bool)
}

// Authorizer decides whether a principal holds a required role.
type Authorizer interface {
	Execute(ctx context.Context, principal *domain.Principal, requiredRole string) bool
}

// GateConfig configures the per-request authentication gate.
type GateConfig struct {
	// AllowedPrefixes lists path prefixes that bypass the gate entirely
	// (static assets, health checks, the login surface itself).
	AllowedPrefixes []string
	// ResourcePrefix is prepended to LoginPath when building the
	// challenge redirect.
	ResourcePrefix string
	// LoginPath is the path of the login challenge page.
	LoginPath string
	// ServiceID scopes token validation to this deployment's service.
	ServiceID string
	// RequiredRole, when non-empty, must match the principal's role
	// exactly for the request to pass.
	RequiredRole string
}

// Gate is the per-request filter: it extracts a token, authenticates and
// authorizes it, and challenges failures with a redirect to the login
// page. Stateless across requests except through the validator's and
// authorizer's caches.
type Gate struct {
	cfg       GateConfig
	validate  TokenValidator
	authorize Authorizer
}

// NewGate creates the request gate.
func NewGate(cfg GateConfig, v TokenValidator, a Authorizer) *Gate {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	return &Gate{cfg: cfg, validate: v, authorize: a}
}

// Middleware returns the echo middleware enforcing the gate.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range g.cfg.AllowedPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			ctx := c.Request().Context()
			token := extractToken(c)

			principal, ok := g.validate.Execute(ctx, token, g.cfg.ServiceID)
			if !ok {
				return g.challenge(c)
			}

			if g.cfg.RequiredRole != "" && !g.authorize.Execute(ctx, principal, g.cfg.RequiredRole) {
				return g.challenge(c)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

// extractToken prefers the Authorization bearer header and falls back to
// the token cookie. Absence of both yields the empty token, which the
// validator fast-rejects.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimPrefix(header, "Bearer "); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// challenge redirects the request to the login page. Only an inbound
// "error" query parameter is propagated; the token and the failure cause
// are never exposed.
func (g *Gate) challenge(c echo.Context) error {
	loginURL := g.cfg.ResourcePrefix + g.cfg.LoginPath
	if reason := c.QueryParam("error"); reason != "" {
		loginURL += "?error=" + url.QueryEscape(reason)
	}
	return c.Redirect(http.StatusSeeOther, loginURL)
}
