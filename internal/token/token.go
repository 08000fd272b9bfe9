// Package token signs and verifies the stateless session token.
//
// The token is an HS256 JWT carrying the account identifier as subject plus
// issued-at and expiry claims. The payload is signed, not encrypted: nothing
// secret goes into it. Validity is purely cryptographic: there is no
// server-side session table, so there is also no revocation.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers malformed, tampered, or wrongly-signed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired covers structurally valid tokens past their expiry.
	// Callers must present both failures identically to clients.
	ErrTokenExpired = errors.New("token expired")
)

// Codec issues and verifies session tokens with a single server-held secret.
// Safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewCodec returns a Codec signing with secret and issuing tokens valid for
// ttl.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be > 0")
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token whose subject is accountID, expiring ttl from now.
func (c *Codec) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", errors.New("empty account id")
	}

	now := c.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry and returns the subject account ID.
// Failures are typed (ErrTokenExpired / ErrTokenInvalid), never panics, and
// a token signed with any other algorithm is rejected outright.
func (c *Codec) Verify(tokenStr string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &sessionClaims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// WithClock overrides the codec clock. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}
