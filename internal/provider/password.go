package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idman-gateway/internal/domain"

	"github.com/google/uuid"
)

// Password authenticates email/password credentials against the stored
// hash and creates a session on success.
// Implements domain.CredentialProvider.
type Password struct {
	deps Deps
}

// NewPassword creates the password provider.
func NewPassword(deps Deps) *Password {
	return &Password{deps: deps}
}

// Login verifies the credential and persists a fresh session. Unknown user
// and wrong password are indistinguishable to the caller. A credential of
// the wrong kind is a wiring defect and fails loudly.
func (p *Password) Login(ctx context.Context, cred domain.Credential, serviceID string) (*domain.Session, error) {
	pc, ok := cred.(domain.PasswordCredential)
	if !ok {
		return nil, fmt.Errorf("%w: %s auth info passed to password authenticator",
			domain.ErrCredentialMismatch, cred.Kind())
	}

	if _, err := p.deps.Services.Get(ctx, serviceID); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceNotFound, err)
	}

	user, err := p.deps.Users.GetByEmail(ctx, pc.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := p.deps.Passwords.Verify(ctx, user.ID, pc.Password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	role, err := p.deps.Roles.Role(ctx, user.ID, serviceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiry := now.Add(p.deps.SessionTTL)
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ServiceID: serviceID,
		Role:      role,
		CreatedAt: now,
		Expiry:    &expiry,
	}
	if err := p.deps.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	p.deps.Logger.InfoContext(ctx, "password login succeeded",
		"user_id", user.ID, "service_id", serviceID)
	return session, nil
}

// RedirectionURL is not supported: password auth never redirects.
func (p *Password) RedirectionURL(serviceID string) (string, error) {
	return "", fmt.Errorf("%w: password provider has no redirection URL", domain.ErrNotImplemented)
}
