package usecase

import (
	"context"
	"log/slog"
	"time"

	"idman-gateway/internal/domain"
)

// RoleCheck is the raw authorization decision wrapped by the cache.
type RoleCheck func(principal *domain.Principal, requiredRole string) bool

// exactRoleMatch is the default decision: exact, case-sensitive equality
// between the principal's role and the required role.
func exactRoleMatch(principal *domain.Principal, requiredRole string) bool {
	return principal.Role == requiredRole
}

// Authorize decides whether a principal holds a required role, caching
// decisions per (identity, role) pair. Denials may be cached under a
// shorter TTL than grants.
type Authorize struct {
	cache       domain.DecisionCache
	raw         RoleCheck
	negativeTTL time.Duration
	logger      *slog.Logger
}

// NewAuthorize creates the authorization usecase. A nil raw check uses
// exact role equality. negativeTTL bounds cached denials; zero means
// denials expire under the same spec as grants.
func NewAuthorize(c domain.DecisionCache, raw RoleCheck, negativeTTL time.Duration, l *slog.Logger) *Authorize {
	if raw == nil {
		raw = exactRoleMatch
	}
	return &Authorize{cache: c, raw: raw, negativeTTL: negativeTTL, logger: l}
}

// Execute returns whether the principal holds the required role. A cache
// miss costs one raw evaluation; no I/O is involved.
func (uc *Authorize) Execute(ctx context.Context, principal *domain.Principal, requiredRole string) bool {
	key := principal.Identity.ID + "\x00" + requiredRole
	if allowed, found := uc.cache.Get(key); found {
		return allowed
	}

	allowed := uc.raw(principal, requiredRole)
	if allowed {
		uc.cache.Set(key, true)
	} else {
		uc.cache.SetWithTTL(key, false, uc.negativeTTL)
		uc.logger.WarnContext(ctx, "authorization denied",
			"identity_id", principal.Identity.ID,
			"role", principal.Role,
			"required_role", requiredRole)
	}
	return allowed
}
