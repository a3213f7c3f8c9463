package domain

import "time"

// TokenPair is what signin and refresh hand back: the short-lived access
// token for the response body and the refresh token for the cookie.
type TokenPair struct {
	AccountID    string
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}
