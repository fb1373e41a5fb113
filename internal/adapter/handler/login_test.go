package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"idman-gateway/internal/domain"
	"idman-gateway/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	session     *domain.Session
	loginErr    error
	redirectURL string
	redirectErr error
}

func (p *stubProvider) Login(_ context.Context, _ domain.Credential, _ string) (*domain.Session, error) {
	if p.loginErr != nil {
		return nil, p.loginErr
	}
	return p.session, nil
}

func (p *stubProvider) RedirectionURL(string) (string, error) {
	return p.redirectURL, p.redirectErr
}

type stubIssuer struct {
	token string
	err   error
}

func (i *stubIssuer) Issue(*domain.Session) (string, error) {
	return i.token, i.err
}

func loginFixture(p *stubProvider, i *stubIssuer) *LoginHandler {
	return NewLoginHandler(usecase.NewLogin(p, i, slog.Default()))
}

func postLogin(t *testing.T, h *LoginHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleLogin(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	provider := &stubProvider{session: &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		ServiceID: "svc-1",
		Role:      "admin",
		Expiry:    &expiry,
	}}
	h := loginFixture(provider, &stubIssuer{token: "signed-token"})

	rec := postLogin(t, h, `{"email":"u@example.com","password":"secret","service_id":"svc-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, "sess-1", resp.Session.ID)
	assert.Equal(t, "user-1", resp.Session.UserID)
	assert.Equal(t, "admin", resp.Session.Role)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "idman-token", cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)
	assert.WithinDuration(t, expiry, cookies[0].Expires, time.Second)
}

func TestHandleLogin_MalformedBody(t *testing.T) {
	h := loginFixture(&stubProvider{}, &stubIssuer{token: "t"})

	rec := postLogin(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogin_MissingFields(t *testing.T) {
	h := loginFixture(&stubProvider{}, &stubIssuer{token: "t"})

	tests := []struct {
		name string
		body string
	}{
		{"no email", `{"password":"secret","service_id":"svc-1"}`},
		{"bad email", `{"email":"nope","password":"secret","service_id":"svc-1"}`},
		{"no password", `{"email":"u@example.com","service_id":"svc-1"}`},
		{"no service", `{"email":"u@example.com","password":"secret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	h := loginFixture(&stubProvider{loginErr: domain.ErrInvalidCredentials}, &stubIssuer{token: "t"})

	rec := postLogin(t, h, `{"email":"u@example.com","password":"wrong","service_id":"svc-1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "no cookie on failed login")
}

func TestHandleLogin_IssuerFailure(t *testing.T) {
	provider := &stubProvider{session: &domain.Session{ID: "sess-1", UserID: "user-1", ServiceID: "svc-1"}}
	h := loginFixture(provider, &stubIssuer{err: assert.AnError})

	rec := postLogin(t, h, `{"email":"u@example.com","password":"secret","service_id":"svc-1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleRedirect(t *testing.T) {
	h := loginFixture(&stubProvider{redirectURL: "https://accounts.google.com/o/oauth2/auth?state=svc-1"}, &stubIssuer{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/login/redirect?service_id=svc-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.HandleRedirect(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=svc-1", rec.Header().Get(echo.HeaderLocation))
}

func TestHandleRedirect_MissingServiceID(t *testing.T) {
	h := loginFixture(&stubProvider{}, &stubIssuer{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/login/redirect", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleRedirect(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandleRedirect_NotImplemented(t *testing.T) {
	h := loginFixture(&stubProvider{redirectErr: domain.ErrNotImplemented}, &stubIssuer{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/login/redirect?service_id=svc-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleRedirect(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotImplemented, httpErr.Code)
}
