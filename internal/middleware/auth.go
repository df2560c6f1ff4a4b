package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"tutorbook/internal/apperr"
	"tutorbook/internal/auth"
)

const principalKey = "principal"

type errorEnvelope struct {
	Success bool          `json:"success"`
	Error   *apperr.Error `json:"error"`
}

// Authenticate parses the Bearer token and stashes the principal in the
// echo context. Core logic never sees an unauthenticated request.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, errorEnvelope{
					Error: apperr.New(apperr.CodeUnauthorized, "missing bearer token"),
				})
			}

			claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorEnvelope{
					Error: apperr.New(apperr.CodeUnauthorized, "invalid or expired token"),
				})
			}

			c.Set(principalKey, auth.Principal{UserID: claims.UserID, Role: claims.Role})
			return next(c)
		}
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorEnvelope{
					Error: apperr.New(apperr.CodeUnauthorized, "missing bearer token"),
				})
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, errorEnvelope{
				Error: apperr.New(apperr.CodeForbidden, "you do not have access to this resource"),
			})
		}
	}
}

// PrincipalFrom extracts the authenticated caller set by Authenticate.
func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
