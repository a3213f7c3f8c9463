package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalid covers every verification failure: malformed, bad
	// signature, expired, wrong algorithm or wrong purpose. Callers must not
	// branch on the wrapped cause except for logging.
	ErrInvalid = errors.New("jwtx: invalid token")

	ErrEmptySecret = errors.New("jwtx: empty signing secret")
)

// Codec signs and verifies HS256 tokens. The zero value uses time.Now.
type Codec struct {
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

func (c Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Sign stamps iat/exp (and a jti when missing) onto claims and returns the
// compact HS256 serialisation keyed by secret.
func (c Codec) Sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw, checks the signature against secret, the expiry
// against the codec clock and the purpose claim.
func (c Codec) Verify(raw string, secret []byte, purpose Purpose) (Claims, error) {
	if raw == "" || len(secret) == 0 {
		return Claims{}, ErrInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if claims.Purpose != purpose {
		return Claims{}, fmt.Errorf("%w: unexpected purpose %q", ErrInvalid, claims.Purpose)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalid)
	}

	return claims, nil
}
