package provider

import (
	"fmt"
	"log/slog"
	"time"

	"idman-gateway/internal/domain"
)

// Deps carries the collaborators a provider may need.
type Deps struct {
	Users      domain.UserStore
	Passwords  domain.PasswordStore
	Sessions   domain.SessionStore
	Roles      domain.UserRoleStore
	Services   domain.ServiceStore
	SessionTTL time.Duration
	BaseURL    string // this server's own base URL, for redirect callbacks
	Logger     *slog.Logger
}

// New dispatches the tagged config to the matching provider. The mapping
// is exhaustive over the closed {password, google} set; an unknown mode is
// a configuration defect.
func New(cfg Config, deps Deps) (domain.CredentialProvider, error) {
	switch cfg.Mode {
	case domain.AuthModePassword:
		return NewPassword(deps), nil
	case domain.AuthModeGoogle:
		return NewGoogle(cfg.Google, deps.BaseURL)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
