package provider

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"idman-gateway/internal/domain"
	"idman-gateway/internal/driver/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passwordFixture(t *testing.T) (*Password, *memory.Store) {
	t.Helper()

	store := memory.New()
	store.AddService(&domain.Service{ID: "S1", Name: "Service One"})
	err := store.AddUser(&domain.User{
		ID:          "user-1",
		Email:       "u@u.t",
		DisplayName: "Test User",
		UserType:    domain.UserTypeHuman,
		AuthMode:    domain.AuthModePassword,
	}, "TESTPASSWORD", "S1", "admin")
	require.NoError(t, err)

	deps := Deps{
		Users:      store,
		Passwords:  store,
		Sessions:   store.Sessions(),
		Roles:      store,
		Services:   store.Services(),
		SessionTTL: time.Hour,
		Logger:     slog.Default(),
	}
	return NewPassword(deps), store
}

func TestPassword_LoginSuccess(t *testing.T) {
	p, store := passwordFixture(t)

	session, err := p.Login(context.Background(), domain.PasswordCredential{
		Email:    "u@u.t",
		Password: "TESTPASSWORD",
	}, "S1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "S1", session.ServiceID)
	assert.Equal(t, "admin", session.Role)
	require.NotNil(t, session.Expiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *session.Expiry, 5*time.Second)

	// The session is persisted.
	stored, err := store.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, stored.UserID)
}

func TestPassword_FreshSessionIDPerLogin(t *testing.T) {
	p, _ := passwordFixture(t)
	cred := domain.PasswordCredential{Email: "u@u.t", Password: "TESTPASSWORD"}

	first, err := p.Login(context.Background(), cred, "S1")
	require.NoError(t, err)
	second, err := p.Login(context.Background(), cred, "S1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestPassword_WrongPassword(t *testing.T) {
	p, _ := passwordFixture(t)

	session, err := p.Login(context.Background(), domain.PasswordCredential{
		Email:    "u@u.t",
		Password: "WRONGPASSWORD",
	}, "S1")

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestPassword_UnknownUserIndistinguishable(t *testing.T) {
	p, _ := passwordFixture(t)

	_, wrongPwdErr := p.Login(context.Background(), domain.PasswordCredential{
		Email:    "u@u.t",
		Password: "WRONGPASSWORD",
	}, "S1")
	_, unknownErr := p.Login(context.Background(), domain.PasswordCredential{
		Email:    "nobody@u.t",
		Password: "TESTPASSWORD",
	}, "S1")

	assert.Equal(t, wrongPwdErr, unknownErr, "unknown user and wrong password must look identical")
}

func TestPassword_WrongCredentialKind(t *testing.T) {
	p, _ := passwordFixture(t)

	session, err := p.Login(context.Background(), domain.GoogleCredential{AuthCode: "code"}, "S1")

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, domain.ErrCredentialMismatch))
	assert.Contains(t, err.Error(), "google auth info passed to password authenticator")
}

func TestPassword_UnknownService(t *testing.T) {
	p, _ := passwordFixture(t)

	_, err := p.Login(context.Background(), domain.PasswordCredential{
		Email:    "u@u.t",
		Password: "TESTPASSWORD",
	}, "no-such-service")

	assert.True(t, errors.Is(err, domain.ErrServiceNotFound))
}

func TestPassword_RedirectionURLNotSupported(t *testing.T) {
	p, _ := passwordFixture(t)

	url, err := p.RedirectionURL("S1")

	assert.Empty(t, url)
	assert.True(t, errors.Is(err, domain.ErrNotImplemented))
}
