package token

import (
	"errors"
	"fmt"
	"time"

	"idman-gateway/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// minSecretLen is the minimum byte length accepted for the HS256 secret.
const minSecretLen = 32

// clockSkewTolerance backdates the not-before claim so freshly issued
// tokens validate on peers with slightly lagging clocks.
const clockSkewTolerance = 2 * time.Minute

// IssuerConfig holds token signing configuration.
type IssuerConfig struct {
	Secret string
	Issuer string
}

// Issuer signs sessions into HS256 bearer tokens.
// Implements domain.SessionIssuer.
type Issuer struct {
	cfg IssuerConfig
}

// NewIssuer creates a session token issuer. Malformed key material is
// rejected here so it fails at startup, not per request.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("%w: need at least %d bytes", domain.ErrSigningSecretWeak, minSecretLen)
	}
	if cfg.Issuer == "" {
		return nil, errors.New("token issuer id cannot be empty")
	}
	return &Issuer{cfg: cfg}, nil
}

// Issue builds and signs a token for the session. The expiration claim is
// present only when the session carries an expiry.
func (i *Issuer) Issue(session *domain.Session) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    i.cfg.Issuer,
		Subject:   session.UserID,
		Audience:  jwt.ClaimStrings{session.ServiceID},
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-clockSkewTolerance)),
	}
	if session.Expiry != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*session.Expiry)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Verifier checks HS256 tokens minted by an Issuer sharing the same secret.
// Implements domain.TokenVerifier.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier.
func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%w: need at least %d bytes", domain.ErrSigningSecretWeak, minSecretLen)
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify validates the signature and time claims and extracts the claims
// the authority needs to resolve the backing session.
func (v *Verifier) Verify(raw string) (*domain.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Subject == "" || claims.ID == "" || len(claims.Audience) == 0 {
		return nil, fmt.Errorf("%w: missing required claim", domain.ErrTokenInvalid)
	}

	return &domain.TokenClaims{
		Subject:   claims.Subject,
		Audience:  claims.Audience[0],
		SessionID: claims.ID,
	}, nil
}
