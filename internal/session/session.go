// Package session binds the signed session token to the HTTP transport as a
// cookie. Sessions are stateless: ending one clears the cookie, nothing is
// revoked server-side.
package session

import (
	"net/http"
	"time"

	"github.com/altonlabs/authd/internal/token"
)

// CookieName is the session cookie, fixed by the client contract.
const CookieName = "token"

// Issuer mints session tokens and writes/clears the session cookie.
//
// In hardened mode the cookie is Secure with SameSite=None (cross-site
// frontends over TLS); otherwise SameSite=Lax without Secure, for local
// development over plain HTTP.
type Issuer struct {
	codec    *token.Codec
	ttl      time.Duration
	hardened bool
}

// NewIssuer returns an Issuer around codec. ttl must match the codec's
// token lifetime so the cookie and the token expire together.
func NewIssuer(codec *token.Codec, ttl time.Duration, hardened bool) *Issuer {
	return &Issuer{codec: codec, ttl: ttl, hardened: hardened}
}

// Issue signs a session token for accountID and sets it as the session
// cookie on w. The token is also returned for clients that prefer a bearer
// header.
func (i *Issuer) Issue(w http.ResponseWriter, accountID string) (string, error) {
	tok, err := i.codec.Issue(accountID)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(i.ttl.Seconds()),
		HttpOnly: true,
		Secure:   i.hardened,
		SameSite: i.sameSite(),
	})
	return tok, nil
}

// Clear instructs the client to drop the session cookie.
func (i *Issuer) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   i.hardened,
		SameSite: i.sameSite(),
	})
}

// TokenFromRequest extracts the raw session token from the request cookie.
// A missing cookie returns the empty string.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (i *Issuer) sameSite() http.SameSite {
	if i.hardened {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
