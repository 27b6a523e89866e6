package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/model"
	"github.com/vergon/rgr-api/internal/utils"
)

// auditSink mirrors the middleware sink; the login handler records its
// own entry because the identity only exists after the handler ran.
type auditSink interface {
	Record(ctx context.Context, entry model.AuditLog)
}

// AuthHandler serves the token lifecycle endpoints.
type AuthHandler struct {
	svc   *auth.Service
	audit auditSink
}

func NewAuthHandler(svc *auth.Service, audit auditSink) *AuthHandler {
	return &AuthHandler{svc: svc, audit: audit}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userPayload struct {
	Login    string `json:"login"`
	TenantID int64  `json:"tenantId"`
}

type tokenPayload struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         userPayload `json:"user"`
}

func validateLogin(req loginRequest) []string {
	var errs []string
	login := strings.TrimSpace(req.Login)
	if n := len(login); n < 3 || n > 50 {
		errs = append(errs, "login must be between 3 and 50 characters")
	}
	if len(req.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	return errs
}

// Login authenticates a login/password pair and returns an access and
// refresh token. Invalid credentials always get the same answer so the
// endpoint cannot be used to probe which logins exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}
	if errs := validateLogin(req); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, utils.Error("Validation failed", errs...))
	}

	pair, id, err := h.svc.Login(c.Request().Context(), strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, utils.Error("Invalid credentials"))
	}

	if h.audit != nil {
		go h.audit.Record(context.Background(), model.AuditLog{
			UserLogin: id.Login,
			CompanyID: id.TenantID,
			Action:    "login",
			Resource:  "auth",
			IPAddress: c.RealIP(),
			UserAgent: c.Request().UserAgent(),
		})
	}

	return c.JSON(http.StatusOK, utils.OK("Login successful", tokenPayload{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userPayload{Login: id.Login, TenantID: id.TenantID},
	}))
}

// Refresh exchanges a valid refresh token for a new token pair. The
// refresh token itself stays valid until it expires or is revoked.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, utils.Error("Invalid request body"))
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, utils.Error("Refresh token required"))
	}

	pair, id, err := h.svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, utils.Error("Invalid or expired refresh token"))
	}

	return c.JSON(http.StatusOK, utils.OK("Token refreshed", tokenPayload{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userPayload{Login: id.Login, TenantID: id.TenantID},
	}))
}

// Verify reports whether the presented access token is still good and,
// when it is, who it belongs to and when it expires.
func (h *AuthHandler) Verify(c echo.Context) error {
	raw, ok := bearer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	claims, err := h.svc.Verify(c.Request().Context(), raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, utils.Error("Invalid or expired token"))
	}

	id := claims.Identity()
	data := map[string]any{
		"user": userPayload{Login: id.Login, TenantID: id.TenantID},
	}
	if claims.ExpiresAt != nil {
		data["expiresAt"] = claims.ExpiresAt.Time
	}
	return c.JSON(http.StatusOK, utils.OK("Token is valid", data))
}

// Logout revokes the presented token. Revoking twice, or revoking an
// already expired token, still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := bearer(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
	}

	if err := h.svc.Logout(c.Request().Context(), raw); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, utils.Error("Invalid token"))
		}
		return c.JSON(http.StatusInternalServerError, utils.Error("Logout failed"))
	}
	return c.JSON(http.StatusOK, utils.OK("Logout successful", nil))
}

func bearer(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}
