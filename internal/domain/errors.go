package domain

import "errors"

// Authentication errors.
var (
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Token errors.
var (
	ErrTokenGeneration   = errors.New("token generation failed")
	ErrSigningSecretWeak = errors.New("signing secret too weak")
)

// External collaborator errors.
var (
	ErrAuthorityUnavailable = errors.New("token authority unavailable")
	ErrUserNotFound         = errors.New("user not found")
	ErrServiceNotFound      = errors.New("service not found")
)

// Provider wiring errors. These indicate a configuration or programming
// defect, not a runtime auth event, and are allowed to propagate.
var (
	ErrCredentialMismatch = errors.New("wrong credential kind")
	ErrNotImplemented     = errors.New("not implemented")
)
