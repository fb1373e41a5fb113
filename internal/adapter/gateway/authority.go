package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"idman-gateway/internal/domain"
)

// TransportConfig bounds the connection pool and timeouts of the authority
// client.
type TransportConfig struct {
	ConnectTimeout      time.Duration
	RequestTimeout      time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// AuthorityGateway is the HTTP-backed client for the remote token authority.
// Implements domain.AuthorityClient.
type AuthorityGateway struct {
	endpoint      string
	serviceSecret string
	httpClient    *http.Client
}

// NewAuthorityGateway creates an authority client with a tuned HTTP
// transport. serviceSecret is the static bearer secret presented on every
// call.
func NewAuthorityGateway(endpoint, serviceSecret string, cfg TransportConfig) *AuthorityGateway {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 3 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 20
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}

	return &AuthorityGateway{
		endpoint:      strings.TrimRight(endpoint, "/"),
		serviceSecret: serviceSecret,
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
	}
}

// principalPayload is the wire form of a validated principal.
type principalPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	UserType    string `json:"user_type"`
	AuthMode    string `json:"auth_mode"`
	Role        string `json:"role"`
	SessionID   string `json:"session_id"`
}

func (p principalPayload) toPrincipal() *domain.Principal {
	return &domain.Principal{
		Identity: domain.Identity{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			UserType:    domain.UserType(p.UserType),
			AuthMode:    domain.AuthMode(p.AuthMode),
		},
		Role:      p.Role,
		SessionID: p.SessionID,
	}
}

// Check posts the token to the authority's check endpoint and returns the
// principal it proves. Any non-200 status or unparseable body means the
// token is not valid.
func (g *AuthorityGateway) Check(ctx context.Context, token, serviceID string) (*domain.Principal, error) {
	checkURL := fmt.Sprintf("%s/apis/auth/check/v1/%s", g.endpoint, url.PathEscape(serviceID))
	form := url.Values{"token": {token}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, checkURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthorityUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+g.serviceSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: authority returned status %d", domain.ErrTokenInvalid, resp.StatusCode)
	}

	var payload principalPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed authority response: %w", domain.ErrTokenInvalid, err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("%w: authority response missing identity id", domain.ErrTokenInvalid)
	}

	return payload.toPrincipal(), nil
}

// identityPayload is the wire form of a bare identity.
type identityPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	UserType    string `json:"user_type"`
	AuthMode    string `json:"auth_mode"`
}

// UserInfo fetches an identity by id. Results are never cached.
func (g *AuthorityGateway) UserInfo(ctx context.Context, serviceID, userID string) (*domain.Identity, error) {
	infoURL := fmt.Sprintf("%s/apis/auth/userinfo/v1/%s/%s",
		g.endpoint, url.PathEscape(serviceID), url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthorityUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.serviceSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrUserNotFound
	default:
		return nil, fmt.Errorf("%w: authority returned status %d", domain.ErrAuthorityUnavailable, resp.StatusCode)
	}

	var payload identityPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed authority response: %w", domain.ErrAuthorityUnavailable, err)
	}

	return &domain.Identity{
		ID:          payload.ID,
		DisplayName: payload.DisplayName,
		UserType:    domain.UserType(payload.UserType),
		AuthMode:    domain.AuthMode(payload.AuthMode),
	}, nil
}
