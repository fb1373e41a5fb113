package usecase

import (
	"context"
	"log/slog"

	"idman-gateway/internal/domain"

	"golang.org/x/sync/singleflight"
)

// ValidateToken authenticates bearer tokens against the authority, with a
// success-memoizing cache composed over the raw remote call. A successful
// validation is cached for the configured window; a failed or errored call
// is never cached, so a token that later becomes valid is picked up.
type ValidateToken struct {
	authority domain.AuthorityClient
	cache     domain.PrincipalCache
	group     singleflight.Group
	logger    *slog.Logger
}

// NewValidateToken creates the validation usecase.
func NewValidateToken(a domain.AuthorityClient, c domain.PrincipalCache, l *slog.Logger) *ValidateToken {
	return &ValidateToken{authority: a, cache: c, logger: l}
}

// Execute validates the token for the given service. An empty token or
// service id is rejected immediately with no remote call. Remote failures
// of any kind are logged and reported as absent; they never propagate.
func (uc *ValidateToken) Execute(ctx context.Context, token, serviceID string) (*domain.Principal, bool) {
	if token == "" || serviceID == "" {
		return nil, false
	}

	key := token + "\x00" + serviceID
	if cached, found := uc.cache.Get(key); found {
		return &cached, true
	}

	// Concurrent validations of the same token collapse into one remote
	// round trip. The call is detached from the request's cancellation so
	// an aborted request still populates the cache for the others.
	v, err, _ := uc.group.Do(key, func() (any, error) {
		principal, err := uc.authority.Check(context.WithoutCancel(ctx), token, serviceID)
		if err != nil {
			return nil, err
		}
		uc.cache.Set(key, *principal)
		return principal, nil
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "token validation failed", "service_id", serviceID, "error", err)
		return nil, false
	}

	return v.(*domain.Principal), true
}

// UserInfo looks up an identity by id. Unlike Execute, results are never
// cached.
func (uc *ValidateToken) UserInfo(ctx context.Context, serviceID, userID string) (*domain.Identity, error) {
	return uc.authority.UserInfo(ctx, serviceID, userID)
}
