package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/pkg/cryptox"
	"github.com/NathanHTC/Authentication/pkg/idx"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/lockx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
)

// SessionManager owns signup, signin and the refresh token lifecycle.
type SessionManager struct {
	Store  store.Store
	Issuer *jwtx.Issuer

	// Locker serialises refreshes per account. The store CAS decides the
	// winner either way; nil skips locking.
	Locker lockx.Locker

	// RevokeOnLogout clears the stored refresh fingerprint on logout, not
	// just the cookie.
	RevokeOnLogout bool

	Metrics *Metrics
}

// Signup registers a new account. No tokens are issued.
func (s *SessionManager) Signup(ctx context.Context, email, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	email, ok := normalizeEmail(email)
	if !ok || password == "" {
		s.Metrics.signup("invalid")
		return domain.Account{}, ErrInvalidInput
	}

	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, email); err == nil {
		s.Metrics.signup("conflict")
		return domain.Account{}, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			s.Metrics.signup("invalid")
			return domain.Account{}, ErrInvalidInput
		}
		return domain.Account{}, err
	}

	acc := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.signup("conflict")
			return domain.Account{}, ErrConflict
		}
		return domain.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	// Re-read for the store's timestamps.
	created, err := s.Store.Accounts().GetAccountByID(ctx, acc.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}

	l.Info("account created", slog.String("account_id", created.ID))
	s.Metrics.signup("ok")
	return created, nil
}

// Signin checks the password and issues a fresh token pair. The new refresh
// fingerprint replaces whatever was stored, signing out any other device.
func (s *SessionManager) Signin(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	email, ok := normalizeEmail(email)
	if !ok || password == "" {
		s.Metrics.signin("invalid")
		return domain.TokenPair{}, ErrInvalidInput
	}

	acc, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.signin("not_found")
			return domain.TokenPair{}, ErrNotFound
		}
		return domain.TokenPair{}, fmt.Errorf("failed to look up account: %w", err)
	}

	if !cryptox.VerifyPassword(password, acc.PasswordHash) {
		l.Info("signin rejected", slog.String("account_id", acc.ID))
		s.Metrics.signin("bad_password")
		return domain.TokenPair{}, ErrUnauthorized
	}

	pair, err := s.issuePair(acc.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Store.Accounts().SetRefreshToken(ctx, acc.ID, cryptox.FingerprintToken(pair.RefreshToken)); err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	l.Info("signed in", slog.String("account_id", acc.ID))
	s.Metrics.signin("ok")
	return pair, nil
}

// Refresh rotates a refresh token. The presented token must verify and must
// be the one currently stored for the account; a token that has already
// been rotated out is rejected with ErrForbidden.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if refreshToken == "" {
		s.Metrics.refresh("missing")
		return domain.TokenPair{}, ErrUnauthenticated
	}

	claims, err := s.Issuer.VerifyRefresh(refreshToken)
	if err != nil {
		l.Debug("refresh token rejected", slog.Any("error", err))
		s.Metrics.refresh("invalid")
		return domain.TokenPair{}, ErrInvalidToken
	}
	accountID := claims.AccountID()

	unlock, err := s.lock(ctx, accountID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	defer unlock()

	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.refresh("unknown_account")
			return domain.TokenPair{}, ErrUnauthenticated
		}
		return domain.TokenPair{}, fmt.Errorf("failed to load account: %w", err)
	}

	presented := cryptox.FingerprintToken(refreshToken)
	if !acc.HasRefreshToken() || !cryptox.EqualFingerprint(presented, *acc.RefreshTokenHash) {
		l.Warn("superseded refresh token presented", slog.String("account_id", acc.ID))
		s.Metrics.refresh("forbidden")
		return domain.TokenPair{}, ErrForbidden
	}

	pair, err := s.issuePair(acc.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	next := cryptox.FingerprintToken(pair.RefreshToken)
	if err := s.Store.Accounts().SwapRefreshToken(ctx, acc.ID, presented, &next); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			l.Warn("refresh lost rotation race", slog.String("account_id", acc.ID))
			s.Metrics.refresh("forbidden")
			return domain.TokenPair{}, ErrForbidden
		case errors.Is(err, store.ErrNotFound):
			s.Metrics.refresh("unknown_account")
			return domain.TokenPair{}, ErrUnauthenticated
		default:
			return domain.TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
		}
	}

	s.Metrics.refresh("ok")
	return pair, nil
}

// Logout revokes the stored refresh token when RevokeOnLogout is set.
// It never fails the request; problems are logged.
func (s *SessionManager) Logout(ctx context.Context, refreshToken string) error {
	if !s.RevokeOnLogout || refreshToken == "" {
		return nil
	}
	l := slogx.FromContext(ctx)

	claims, err := s.Issuer.VerifyRefresh(refreshToken)
	if err != nil {
		l.Debug("logout with invalid refresh token", slog.Any("error", err))
		return nil
	}

	unlock, err := s.lock(ctx, claims.AccountID())
	if err != nil {
		l.Warn("logout could not lock account", slog.Any("error", err))
		return nil
	}
	defer unlock()

	err = s.Store.Accounts().SwapRefreshToken(ctx, claims.AccountID(), cryptox.FingerprintToken(refreshToken), nil)
	switch {
	case err == nil:
		l.Info("refresh token revoked", slog.String("account_id", claims.AccountID()))
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
		l.Debug("logout token already superseded", slog.String("account_id", claims.AccountID()))
	default:
		l.Error("failed to revoke refresh token", slog.Any("error", err))
	}
	return nil
}

func (s *SessionManager) issuePair(accountID string) (domain.TokenPair, error) {
	access, err := s.Issuer.IssueAccess(accountID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.Issuer.IssueRefresh(accountID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return domain.TokenPair{
		AccountID:    accountID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    jwtx.AccessTokenTTL,
	}, nil
}

func (s *SessionManager) lock(ctx context.Context, accountID string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}

	unlock, err := s.Locker.Lock(ctx, "refresh:"+accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return unlock, nil
}
