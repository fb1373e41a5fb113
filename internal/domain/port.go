package domain

import (
	"context"
	"time"
)

// AuthorityClient talks to the remote token authority.
type AuthorityClient interface {
	// Check exchanges a bearer token for the principal it proves.
	Check(ctx context.Context, token, serviceID string) (*Principal, error)
	// UserInfo looks up an identity by id. Never cached.
	UserInfo(ctx context.Context, serviceID, userID string) (*Identity, error)
}

// PrincipalCache memoizes successfully validated principals by token.
type PrincipalCache interface {
	Get(key string) (Principal, bool)
	Set(key string, p Principal)
}

// DecisionCache memoizes authorization decisions per (identity, role) pair.
type DecisionCache interface {
	Get(key string) (bool, bool)
	Set(key string, allowed bool)
	SetWithTTL(key string, allowed bool, ttl time.Duration)
}

// CredentialProvider turns a login attempt into a session, or a challenge
// into an external redirect, depending on the active strategy.
type CredentialProvider interface {
	Login(ctx context.Context, cred Credential, serviceID string) (*Session, error)
	RedirectionURL(serviceID string) (string, error)
}

// SessionIssuer signs a session into an opaque bearer token.
type SessionIssuer interface {
	Issue(session *Session) (string, error)
}

// TokenClaims is the claim subset the authority needs to resolve a token
// back to its session.
type TokenClaims struct {
	Subject   string
	Audience  string
	SessionID string
}

// TokenVerifier checks a signed token and extracts its claims.
type TokenVerifier interface {
	Verify(raw string) (*TokenClaims, error)
}

// UserStore provides read access to stored accounts.
type UserStore interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PasswordStore verifies and updates password material. Verify must compare
// in constant time.
type PasswordStore interface {
	Verify(ctx context.Context, userID, password string) (bool, error)
	Set(ctx context.Context, userID, password string) error
}

// SessionStore persists sessions created at login.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// UserRoleStore resolves the role a user holds for a service.
type UserRoleStore interface {
	Role(ctx context.Context, userID, serviceID string) (string, error)
}

// ServiceStore looks up registered services.
type ServiceStore interface {
	Get(ctx context.Context, id string) (*Service, error)
}
