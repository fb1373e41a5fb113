// Package provider implements the closed set of credential strategies:
// password login against the stored hash, and a Google-style external
// redirect. Exactly one provider is active per deployment, selected by
// static configuration.
package provider

import "idman-gateway/internal/domain"

// Config is the tagged provider configuration. Mode selects the variant;
// Google is read only when Mode is AuthModeGoogle.
type Config struct {
	Mode   domain.AuthMode
	Google GoogleConfig
}

// GoogleConfig configures the Google redirect provider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	LoginDomain  string // restricts logins to one hosted domain when set
	Proxy        string // outbound proxy for the future token exchange
}
