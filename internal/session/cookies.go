package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/blogpost/internal/tokens"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	CookiePath    = "/"
)

// Cookies binds session tokens to http-only, SameSite=Lax cookies on path "/".
// Max-Age and the token exp claim are both derived from the token TTL.
type Cookies struct {
	Secure bool
}

func (k Cookies) Create(name string, tok tokens.Token) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    tok.Value,
		Path:     CookiePath,
		Expires:  tok.ExpiresAt,
		MaxAge:   int(tok.TTL / time.Second),
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) Delete(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     CookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) SetSession(c echo.Context, pair tokens.Pair) {
	c.SetCookie(k.Create(AccessCookie, pair.Access))
	c.SetCookie(k.Create(RefreshCookie, pair.Refresh))
}

func (k Cookies) ClearSession(c echo.Context) {
	c.SetCookie(k.Delete(AccessCookie))
	c.SetCookie(k.Delete(RefreshCookie))
}

// Value returns the cookie value or "" when the cookie is absent.
func Value(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
