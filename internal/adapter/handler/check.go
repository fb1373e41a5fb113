package handler

import (
	"net/http"

	"idman-gateway/internal/domain"
	"idman-gateway/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CheckHandler serves the authority side of the token validation protocol.
type CheckHandler struct {
	uc *usecase.CheckToken
}

// NewCheckHandler creates a new check handler.
func NewCheckHandler(uc *usecase.CheckToken) *CheckHandler {
	return &CheckHandler{uc: uc}
}

// principalResponse is the wire form of a validated principal. Mirrors the
// payload the authority gateway client decodes.
type principalResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	UserType    string `json:"user_type"`
	AuthMode    string `json:"auth_mode"`
	Role        string `json:"role"`
	SessionID   string `json:"session_id"`
}

func toPrincipalResponse(p *domain.Principal) principalResponse {
	return principalResponse{
		ID:          p.Identity.ID,
		DisplayName: p.Identity.DisplayName,
		UserType:    string(p.Identity.UserType),
		AuthMode:    string(p.Identity.AuthMode),
		Role:        p.Role,
		SessionID:   p.SessionID,
	}
}

// HandleCheck processes POST /apis/auth/check/v1/:service_id. The token
// rides in the form body; the service secret guard runs before this.
func (h *CheckHandler) HandleCheck(c echo.Context) error {
	serviceID := c.Param("service_id")
	token := c.FormValue("token")

	principal, err := h.uc.Execute(c.Request().Context(), token, serviceID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, toPrincipalResponse(principal))
}

// identityResponse is the wire form of a bare identity.
type identityResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	UserType    string `json:"user_type"`
	AuthMode    string `json:"auth_mode"`
}

// HandleUserInfo processes GET /apis/auth/userinfo/v1/:service_id/:user_id.
func (h *CheckHandler) HandleUserInfo(c echo.Context) error {
	identity, err := h.uc.UserInfo(c.Request().Context(), c.Param("service_id"), c.Param("user_id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, identityResponse{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		UserType:    string(identity.UserType),
		AuthMode:    string(identity.AuthMode),
	})
}
