package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
)

// AccessGuard resolves a bearer access token to its account.
type AccessGuard struct {
	Store  store.Store
	Issuer *jwtx.Issuer
}

// Authenticate verifies an access token and loads the account it names.
func (g *AccessGuard) Authenticate(ctx context.Context, bearer string) (domain.Account, error) {
	if bearer == "" {
		return domain.Account{}, ErrUnauthenticated
	}

	claims, err := g.Issuer.VerifyAccess(bearer)
	if err != nil {
		slogx.FromContext(ctx).Debug("access token rejected", "error", err)
		return domain.Account{}, ErrInvalidToken
	}

	acc, err := g.Store.Accounts().GetAccountByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUnauthenticated
		}
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	return acc, nil
}
