package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
)

type cookiePolicy struct {
	production bool
	maxAge     time.Duration
}

func (p cookiePolicy) base() *http.Cookie {
	c := &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.production,
	}
	// SameSite=None requires Secure, so plain-HTTP development uses Lax.
	if p.production {
		c.SameSite = http.SameSiteNoneMode
	} else {
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}

func (p cookiePolicy) setRefreshToken(w http.ResponseWriter, token string) {
	c := p.base()
	c.Value = token
	c.MaxAge = int(p.maxAge.Seconds())
	http.SetCookie(w, c)
}

func (p cookiePolicy) clearRefreshToken(w http.ResponseWriter) {
	c := p.base()
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// refreshTokenFromRequest looks in the refresh cookie first and then in the
// Authorization header, so browsers and header-only clients share endpoints.
func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
}
