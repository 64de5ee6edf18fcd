package httpserver

import (
	"net/http"
	"time"

	"github.com/Skotchmaster/account_service/internal/middleware/auth"
)

const (
	refreshCookie = "refreshToken"
	refreshPath   = "/api/v1/auth"
)

// Cookies controls the attributes of the session cookies. Cross-site
// frontends need Secure with SameSite=None.
type Cookies struct {
	Secure bool
}

func (c Cookies) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c Cookies) create(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	}
}

func (c Cookies) delete(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	}
}

func (c Cookies) Access(value string, exp time.Time) *http.Cookie {
	return c.create(auth.AccessCookie, value, "/", exp)
}

func (c Cookies) Refresh(value string, exp time.Time) *http.Cookie {
	return c.create(refreshCookie, value, refreshPath, exp)
}

func (c Cookies) Clear() []*http.Cookie {
	return []*http.Cookie{
		c.delete(auth.AccessCookie, "/"),
		c.delete(refreshCookie, refreshPath),
	}
}
