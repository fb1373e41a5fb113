package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"idman-gateway/internal/domain"
)

// CheckToken is the authority side of token validation: it verifies a
// signed token, resolves the backing session and returns the principal it
// proves for the requested service.
type CheckToken struct {
	verifier domain.TokenVerifier
	sessions domain.SessionStore
	users    domain.UserStore
	services domain.ServiceStore
	logger   *slog.Logger
}

// NewCheckToken creates the authority-side check usecase.
func NewCheckToken(v domain.TokenVerifier, s domain.SessionStore, u domain.UserStore, svc domain.ServiceStore, l *slog.Logger) *CheckToken {
	return &CheckToken{verifier: v, sessions: s, users: u, services: svc, logger: l}
}

// Execute verifies the raw token against the given service and resolves
// the principal.
func (uc *CheckToken) Execute(ctx context.Context, rawToken, serviceID string) (*domain.Principal, error) {
	if rawToken == "" || serviceID == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := uc.verifier.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.Audience != serviceID {
		return nil, fmt.Errorf("%w: token audience %q does not match service", domain.ErrTokenInvalid, claims.Audience)
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionNotFound, err)
	}
	if session.Expired(time.Now()) {
		return nil, domain.ErrSessionExpired
	}
	if session.UserID != claims.Subject || session.ServiceID != serviceID {
		return nil, fmt.Errorf("%w: session does not match token claims", domain.ErrTokenInvalid)
	}

	user, err := uc.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUserNotFound, err)
	}

	return &domain.Principal{
		Identity:  user.AsIdentity(),
		Role:      session.Role,
		SessionID: session.ID,
	}, nil
}

// UserInfo resolves an identity by id for the given service. Backs the
// uncached userinfo endpoint.
func (uc *CheckToken) UserInfo(ctx context.Context, serviceID, userID string) (*domain.Identity, error) {
	if _, err := uc.services.Get(ctx, serviceID); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceNotFound, err)
	}

	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUserNotFound, err)
	}

	identity := user.AsIdentity()
	return &identity, nil
}
