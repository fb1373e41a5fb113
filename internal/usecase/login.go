package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"idman-gateway/internal/domain"
)

// LoginResult holds the session created by a successful login and its
// signed token.
type LoginResult struct {
	Session *domain.Session
	Token   string
}

// Login orchestrates the login flow: the active credential provider turns
// the credential into a session, and the issuer signs it.
type Login struct {
	provider domain.CredentialProvider
	issuer   domain.SessionIssuer
	logger   *slog.Logger
}

// NewLogin creates the login usecase.
func NewLogin(p domain.CredentialProvider, i domain.SessionIssuer, l *slog.Logger) *Login {
	return &Login{provider: p, issuer: i, logger: l}
}

// Execute authenticates the credential and returns the signed session.
// Provider errors pass through unchanged: credential-kind mismatches and
// unsupported operations are wiring defects the caller must see.
func (uc *Login) Execute(ctx context.Context, cred domain.Credential, serviceID string) (*LoginResult, error) {
	session, err := uc.provider.Login(ctx, cred, serviceID)
	if err != nil {
		return nil, err
	}

	token, err := uc.issuer.Issue(session)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to issue session token",
			"session_id", session.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	uc.logger.InfoContext(ctx, "session issued",
		"session_id", session.ID,
		"user_id", session.UserID,
		"service_id", session.ServiceID)

	return &LoginResult{Session: session, Token: token}, nil
}

// RedirectionURL asks the active provider for its external authorization
// URL. Providers without a redirect flow return domain.ErrNotImplemented.
func (uc *Login) RedirectionURL(serviceID string) (string, error) {
	return uc.provider.RedirectionURL(serviceID)
}
