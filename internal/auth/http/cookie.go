package http

import (
	"net/http"

	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
)

// CookieConfig controls the attributes of the refresh token cookie.
type CookieConfig struct {
	Secure bool
	Domain string
}

func (c CookieConfig) refresh(token string) *http.Cookie {
	return &http.Cookie{
		Name:     authsdk.RefreshCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(jwtx.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setRefreshCookie must run before the body is written.
func (c CookieConfig) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.refresh(token))
}

func (c CookieConfig) clearRefreshCookie(w http.ResponseWriter) {
	ck := c.refresh("")
	ck.MaxAge = -1
	http.SetCookie(w, ck)
}

func refreshCookie(r *http.Request) string {
	ck, err := r.Cookie(authsdk.RefreshCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}
