package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/pkg/httpx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
)

type accountCtxKey struct{}

// ContextWithAccount attaches the authenticated account to ctx.
func ContextWithAccount(ctx context.Context, acc domain.Account) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, acc)
}

// AccountFromContext returns the account set by RequireAccount.
func AccountFromContext(ctx context.Context) (domain.Account, bool) {
	acc, ok := ctx.Value(accountCtxKey{}).(domain.Account)
	return acc, ok
}

// guardMessages follow the wording clients already match on.
var guardMessages = messages{
	service.ErrUnauthenticated: "No token",
	service.ErrInvalidToken:    "Invalid token!",
}

// RequireAccount rejects requests without a valid bearer access token and
// puts the resolved account on the request context.
func RequireAccount(guard *service.AccessGuard) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := httpx.BearerToken(r)
			if err != nil {
				if errors.Is(err, httpx.ErrNoCredentials) {
					writeError(w, r, service.ErrUnauthenticated, guardMessages)
				} else {
					writeError(w, r, service.ErrInvalidToken, guardMessages)
				}
				return
			}

			acc, err := guard.Authenticate(ctx, token)
			if err != nil {
				overrides := guardMessages
				// A verified token whose account is gone.
				if errors.Is(err, service.ErrUnauthenticated) {
					overrides = messages{service.ErrUnauthenticated: "user doesn't exist!"}
				}
				writeError(w, r, err, overrides)
				return
			}

			ctx = slogx.WithAccountID(ctx, acc.ID)
			ctx = ContextWithAccount(ctx, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
