package handler

import (
	"net/http"
	"time"

	"idman-gateway/internal/domain"
	"idman-gateway/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// tokenCookieName is the cookie the login handler issues and the gate
// reads back.
const tokenCookieName = "idman-token"

// LoginHandler drives the login flow through the active credential
// provider.
type LoginHandler struct {
	uc       *usecase.Login
	validate *validator.Validate
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(uc *usecase.Login) *LoginHandler {
	return &LoginHandler{uc: uc, validate: validator.New()}
}

// loginRequest is the password login DTO.
type loginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	ServiceID string `json:"service_id" validate:"required"`
}

// loginResponse returns the signed token and session metadata.
type loginResponse struct {
	OK      bool        `json:"ok"`
	Token   string      `json:"token"`
	Session sessionInfo `json:"session"`
}

type sessionInfo struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ServiceID string     `json:"service_id"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// HandleLogin processes POST /login with a password credential.
func (h *LoginHandler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing or invalid login fields")
	}

	result, err := h.uc.Execute(c.Request().Context(), domain.PasswordCredential{
		Email:    req.Email,
		Password: req.Password,
	}, req.ServiceID)
	if err != nil {
		return mapDomainError(err)
	}

	session := result.Session
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if session.Expiry != nil {
		cookie.Expires = *session.Expiry
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, loginResponse{
		OK:    true,
		Token: result.Token,
		Session: sessionInfo{
			ID:        session.ID,
			UserID:    session.UserID,
			ServiceID: session.ServiceID,
			Role:      session.Role,
			ExpiresAt: session.Expiry,
		},
	})
}

// HandleRedirect processes GET /login/redirect?service_id=... by sending
// the browser to the active provider's external authorization URL.
func (h *LoginHandler) HandleRedirect(c echo.Context) error {
	serviceID := c.QueryParam("service_id")
	if serviceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "service_id is required")
	}

	target, err := h.uc.RedirectionURL(serviceID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Redirect(http.StatusSeeOther, target)
}
