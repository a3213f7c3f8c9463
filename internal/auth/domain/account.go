package domain

import "time"

type Account struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // bcrypt encoded
	RefreshTokenHash *string    `json:"-"` // fingerprint of the live refresh token, nil when signed out
	EmailVerifiedAt  *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HasRefreshToken reports whether a refresh token is currently live.
func (a Account) HasRefreshToken() bool {
	return a.RefreshTokenHash != nil && *a.RefreshTokenHash != ""
}

// EmailVerified reports whether the address has been confirmed.
func (a Account) EmailVerified() bool {
	return a.EmailVerifiedAt != nil
}
