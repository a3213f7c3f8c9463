package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes per purpose.
const (
	// AccessTokenTTL is the lifetime of bearer access tokens.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of the refresh cookie token.
	RefreshTokenTTL = 90 * 24 * time.Hour

	// PasswordResetTTL is the lifetime of a password reset link.
	PasswordResetTTL = 15 * time.Minute

	// EmailVerifyTTL is the lifetime of an email verification link.
	EmailVerifyTTL = 15 * time.Minute
)

// Purpose identifies what a token may be used for. It is carried in the
// "typ" claim and checked on every verification, on top of the secrets
// being distinct per purpose.
type Purpose string

const (
	PurposeAccess        Purpose = "access"
	PurposeRefresh       Purpose = "refresh"
	PurposePasswordReset Purpose = "password_reset"
	PurposeEmailVerify   Purpose = "email_verify"
)

// Claims is the claim set shared by every token the service mints.
type Claims struct {
	jwt.RegisteredClaims

	// Purpose of the token ("typ")
	Purpose Purpose `json:"typ"`

	// Email is only set on reset and verification tokens
	Email string `json:"email,omitempty"`
}

// AccountID returns the subject, which is always the account id.
func (c Claims) AccountID() string { return c.Subject }

// NewClaims builds claims for accountID. Timestamps and jti are filled in
// by Codec.Sign.
func NewClaims(accountID string, purpose Purpose) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: accountID},
		Purpose:          purpose,
	}
}
