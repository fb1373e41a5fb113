package token

import (
	"errors"
	"testing"
	"time"

	"idman-gateway/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testSession(expiry *time.Time) *domain.Session {
	return &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		ServiceID: "svc-1",
		Role:      "admin",
		CreatedAt: time.Now(),
		Expiry:    expiry,
	}
}

func TestNewIssuer_WeakSecret(t *testing.T) {
	_, err := NewIssuer(IssuerConfig{Secret: "short", Issuer: "idman"})
	assert.True(t, errors.Is(err, domain.ErrSigningSecretWeak))
}

func TestIssuer_ClaimConstruction(t *testing.T) {
	issuer, err := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "idman"})
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := issuer.Issue(testSession(&expiry))
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(*jwt.RegisteredClaims)

	assert.Equal(t, "idman", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, jwt.ClaimStrings{"svc-1"}, claims.Audience)
	assert.Equal(t, "sess-1", claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, expiry, claims.ExpiresAt.Time, time.Second)

	// Not-before is backdated for clock skew.
	require.NotNil(t, claims.NotBefore)
	assert.WithinDuration(t, time.Now().Add(-2*time.Minute), claims.NotBefore.Time, 5*time.Second)
}

func TestIssuer_NoExpiryOmitsClaim(t *testing.T) {
	issuer, err := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "idman"})
	require.NoError(t, err)

	signed, err := issuer.Issue(testSession(nil))
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	assert.Nil(t, claims.ExpiresAt)
}

func TestVerifier_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "idman"})
	require.NoError(t, err)
	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour)
	signed, err := issuer.Issue(testSession(&expiry))
	require.NoError(t, err)

	claims, err := verifier.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "svc-1", claims.Audience)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestVerifier_WrongSecret(t *testing.T) {
	issuer, err := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "idman"})
	require.NoError(t, err)
	verifier, err := NewVerifier("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	signed, err := issuer.Issue(testSession(nil))
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestVerifier_ExpiredToken(t *testing.T) {
	issuer, err := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "idman"})
	require.NoError(t, err)
	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	expiry := time.Now().Add(-time.Minute)
	signed, err := issuer.Issue(testSession(&expiry))
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
}

func TestVerifier_RejectsUnsignedAlg(t *testing.T) {
	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:  "user-1",
		Audience: jwt.ClaimStrings{"svc-1"},
		ID:       "sess-1",
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}

func TestVerifier_Garbage(t *testing.T) {
	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	_, err = verifier.Verify("not-a-token")
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}
