package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/student-registry/registry-api/internal/core/ports"
)

const (
	AccessCookieName  = "access_token_cookie"
	RefreshCookieName = "refresh_token_cookie"

	// UserIDKey is the echo context key the verified identity is stored under.
	UserIDKey = "user_id"
)

// Auth verifies the access token cookie and injects the user ID into the context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AccessCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			userID, err := verifier.Verify(cookie.Value, ports.AccessToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
