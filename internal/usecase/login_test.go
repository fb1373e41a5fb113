package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"idman-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider implements domain.CredentialProvider for testing.
type mockProvider struct {
	session     *domain.Session
	loginErr    error
	redirectURL string
	redirectErr error
}

func (m *mockProvider) Login(_ context.Context, cred domain.Credential, serviceID string) (*domain.Session, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.session, nil
}

func (m *mockProvider) RedirectionURL(serviceID string) (string, error) {
	return m.redirectURL, m.redirectErr
}

// mockIssuer implements domain.SessionIssuer for testing.
type mockIssuer struct {
	token string
	err   error
}

func (m *mockIssuer) Issue(*domain.Session) (string, error) {
	return m.token, m.err
}

func TestLogin_Success(t *testing.T) {
	session := &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		ServiceID: "svc-1",
		Role:      "admin",
		CreatedAt: time.Now(),
	}
	uc := NewLogin(&mockProvider{session: session}, &mockIssuer{token: "signed-token"}, slog.Default())

	result, err := uc.Execute(context.Background(), domain.PasswordCredential{Email: "u@u.t", Password: "pw"}, "svc-1")

	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.Equal(t, "sess-1", result.Session.ID)
}

func TestLogin_InvalidCredentialsPassThrough(t *testing.T) {
	uc := NewLogin(&mockProvider{loginErr: domain.ErrInvalidCredentials}, &mockIssuer{}, slog.Default())

	result, err := uc.Execute(context.Background(), domain.PasswordCredential{}, "svc-1")

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLogin_CredentialMismatchPassThrough(t *testing.T) {
	uc := NewLogin(&mockProvider{loginErr: domain.ErrCredentialMismatch}, &mockIssuer{}, slog.Default())

	_, err := uc.Execute(context.Background(), domain.GoogleCredential{}, "svc-1")
	assert.True(t, errors.Is(err, domain.ErrCredentialMismatch))
}

func TestLogin_IssuerFailure(t *testing.T) {
	session := &domain.Session{ID: "sess-1", UserID: "user-1", ServiceID: "svc-1"}
	uc := NewLogin(&mockProvider{session: session}, &mockIssuer{err: errors.New("bad key")}, slog.Default())

	result, err := uc.Execute(context.Background(), domain.PasswordCredential{}, "svc-1")

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrTokenGeneration))
}

func TestLogin_RedirectionURL(t *testing.T) {
	uc := NewLogin(&mockProvider{redirectURL: "https://accounts.example.com/auth"}, &mockIssuer{}, slog.Default())

	url, err := uc.RedirectionURL("svc-1")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/auth", url)
}

func TestLogin_RedirectionURLNotImplemented(t *testing.T) {
	uc := NewLogin(&mockProvider{redirectErr: domain.ErrNotImplemented}, &mockIssuer{}, slog.Default())

	_, err := uc.RedirectionURL("svc-1")
	assert.True(t, errors.Is(err, domain.ErrNotImplemented))
}
