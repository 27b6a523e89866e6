package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/utils"
)

// RequirePermission returns a middleware that asks the gate whether the
// authenticated user's role grants the given resource/action pair.
// It must run after Authenticate; without an identity the request is
// rejected outright.
func RequirePermission(gate *auth.Gate, resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
			}

			decision := gate.Check(c.Request().Context(), id, resource, action)
			if !decision.Allowed {
				return c.JSON(http.StatusForbidden, utils.Error(decision.Reason))
			}
			return next(c)
		}
	}
}
