package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/student-registry/registry-api/internal/core/ports"
)

// CookieConfig controls the security attributes of the token cookies.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps "lax", "strict" and "none" to http.SameSite; anything
// else yields Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (cc CookieConfig) set(c echo.Context, name string, tok ports.IssuedToken) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    tok.Value,
		Path:     "/",
		MaxAge:   int(tok.TTL.Seconds()),
		Expires:  time.Now().Add(tok.TTL),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.SameSite,
	})
}

// clear expires the cookie with the same attributes it was set with.
func (cc CookieConfig) clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.SameSite,
	})
}
