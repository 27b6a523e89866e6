package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/auth"
	"github.com/vergon/rgr-api/internal/utils"
)

// identityKey is the echo context key under which the authenticated
// identity is stored. Handlers read it via CurrentIdentity.
const identityKey = "auth.identity"

// Authenticate returns an Echo middleware that validates a Bearer access
// token and injects the resulting identity into the request context.
// Protected routes must be wrapped by this before any permission check.
func Authenticate(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, utils.Error("Access token required"))
			}

			claims, err := svc.Verify(c.Request().Context(), raw)
			if err != nil {
				// Every failure mode collapses to the same message so the
				// response never reveals why the token was rejected.
				return c.JSON(http.StatusUnauthorized, utils.Error("Invalid or expired token"))
			}

			id := claims.Identity()
			c.Set(identityKey, id)
			ctx := auth.ContextWithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// OptionalAuthenticate resolves an identity when a valid Bearer token is
// present but lets the request through either way. Used on routes that
// personalise output without requiring login.
func OptionalAuthenticate(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if claims, err := svc.Verify(c.Request().Context(), raw); err == nil {
					id := claims.Identity()
					c.Set(identityKey, id)
					ctx := auth.ContextWithIdentity(c.Request().Context(), id)
					c.SetRequest(c.Request().WithContext(ctx))
				}
			}
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity placed by Authenticate, or false
// when the request is anonymous.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}
