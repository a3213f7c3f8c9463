package jwtx

import (
	"bytes"
	"errors"
	"fmt"
)

// Secrets holds the fixed server-side signing secret for each purpose.
// Password reset tokens are keyed by the account's password hash instead,
// so they have no entry here.
type Secrets struct {
	Access      []byte
	Refresh     []byte
	EmailVerify []byte
}

var ErrWeakSecrets = errors.New("jwtx: secrets must be non-empty and distinct")

// Validate rejects empty secrets and any secret reused across purposes.
func (s Secrets) Validate() error {
	named := []struct {
		name   string
		secret []byte
	}{
		{"access", s.Access},
		{"refresh", s.Refresh},
		{"email verify", s.EmailVerify},
	}

	for i, a := range named {
		if len(a.secret) == 0 {
			return fmt.Errorf("%w: %s secret is empty", ErrWeakSecrets, a.name)
		}
		for _, b := range named[i+1:] {
			if bytes.Equal(a.secret, b.secret) {
				return fmt.Errorf("%w: %s and %s secrets match", ErrWeakSecrets, a.name, b.name)
			}
		}
	}
	return nil
}
