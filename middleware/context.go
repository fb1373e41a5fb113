package middleware

import (
	"context"

	"idman-gateway/internal/domain"
)

// principalKey is the unexported, collision-proof context key for the
// resolved principal.
type principalKey struct{}

// WithPrincipal returns a context carrying the resolved principal.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom retrieves the principal bound by the gate, or nil when the
// request was not authenticated.
func PrincipalFrom(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey{}).(*domain.Principal)
	return p
}
