package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callServiceAuth(t *testing.T, secret, authHeader string) (int, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/apis/auth/check/v1/svc-1", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ServiceAuth(secret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec.Code, err
}

func TestServiceAuth_ValidSecret(t *testing.T) {
	code, err := callServiceAuth(t, "s3cret", "Bearer s3cret")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
}

func TestServiceAuth_MissingHeader(t *testing.T) {
	_, err := callServiceAuth(t, "s3cret", "")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestServiceAuth_NotBearer(t *testing.T) {
	_, err := callServiceAuth(t, "s3cret", "Basic dXNlcjpwdw==")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestServiceAuth_WrongSecret(t *testing.T) {
	_, err := callServiceAuth(t, "s3cret", "Bearer wrong")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
