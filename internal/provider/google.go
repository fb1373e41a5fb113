package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"idman-gateway/internal/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Google is the external-redirect provider: it hands unauthenticated users
// to Google's authorization endpoint. The callback token exchange is
// handled outside the core login path.
// Implements domain.CredentialProvider.
type Google struct {
	oauth       *oauth2.Config
	loginDomain string
	proxy       *url.URL // reserved for the exchange step's HTTP client
}

// NewGoogle creates the Google redirect provider. The callback URL is
// derived from this server's own base URL and the auth mode.
func NewGoogle(cfg GoogleConfig, baseURL string) (*Google, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google provider requires client id and client secret")
	}
	if baseURL == "" {
		return nil, errors.New("google provider requires the server base URL")
	}

	var proxy *url.URL
	if cfg.Proxy != "" {
		parsed, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid google proxy url: %w", err)
		}
		proxy = parsed
	}

	callback := strings.TrimRight(baseURL, "/") + "/login/callback/" + string(domain.AuthModeGoogle)
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  callback,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		loginDomain: cfg.LoginDomain,
		proxy:       proxy,
	}, nil
}

// RedirectionURL composes the external authorization URL for the service.
// The service id rides in the state parameter so the callback can route
// the exchange.
func (g *Google) RedirectionURL(serviceID string) (string, error) {
	if serviceID == "" {
		return "", errors.New("service id cannot be empty")
	}

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if g.loginDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", g.loginDomain))
	}
	return g.oauth.AuthCodeURL(serviceID, opts...), nil
}

// Login is driven by the callback exchange, which is not part of the core
// login path.
func (g *Google) Login(ctx context.Context, cred domain.Credential, serviceID string) (*domain.Session, error) {
	return nil, fmt.Errorf("%w: google login is completed by the callback exchange", domain.ErrNotImplemented)
}
