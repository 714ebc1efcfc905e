// Package session binds the token pair to HTTP clients through two
// independent cookies and reads it back from incoming requests.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/gin-gonic/gin"
)

type Options struct {
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	Domain        string
	Secure        bool
}

// Transport sets, reads and clears the session cookies. Set and clear use
// the same Path and Domain; a cookie cleared with different attributes is
// kept by the browser.
type Transport struct {
	opts Options
}

func NewTransport(opts Options) *Transport {
	return &Transport{opts: opts}
}

// Attach writes both cookies.
func (t *Transport) Attach(w http.ResponseWriter, pair auth.TokenPair) {
	http.SetCookie(w, t.cookie(common.AccessTokenCookieName, pair.AccessToken, t.opts.AccessMaxAge))
	http.SetCookie(w, t.cookie(common.RefreshTokenCookieName, pair.RefreshToken, t.opts.RefreshMaxAge))
}

// Clear expires both cookies.
func (t *Transport) Clear(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		c := t.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (t *Transport) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   t.opts.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Extract returns the named cookie's value, or "" when absent.
func Extract(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// ExtractFromContext is Extract for gin handlers. It reads the underlying
// request so both call paths see the same value.
func ExtractFromContext(c *gin.Context, name string) string {
	return Extract(c.Request, name)
}

// AccessToken prefers the access cookie and falls back to an
// "Authorization: Bearer" header.
func AccessToken(r *http.Request) string {
	if tok := Extract(r, common.AccessTokenCookieName); tok != "" {
		return tok
	}
	return bearer(r)
}

// RefreshToken is only ever read from its cookie.
func RefreshToken(r *http.Request) string {
	return Extract(r, common.RefreshTokenCookieName)
}

func bearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
