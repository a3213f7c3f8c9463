package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NathanHTC/Authentication/internal/auth/mail"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/pkg/cryptox"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
)

// PasswordResetService runs the emailed reset link flow. Reset tokens are
// signed with the account's current password hash, so a completed reset
// invalidates every link issued before it.
type PasswordResetService struct {
	Store  store.Store
	Issuer *jwtx.Issuer
	Mailer mail.Sender

	// ClientURL is the frontend origin the reset link points at.
	ClientURL string

	Metrics *Metrics
}

// RequestReset mails a reset link to the account registered for email.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	email, ok := normalizeEmail(email)
	if !ok {
		return ErrInvalidInput
	}

	acc, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.reset("request", "not_found")
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := s.Issuer.IssuePasswordReset(acc.ID, acc.Email, acc.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	msg, err := mail.PasswordReset(acc.Email, joinURL(s.ClientURL, "reset-password", acc.ID, token), jwtx.PasswordResetTTL)
	if err != nil {
		return err
	}

	err = s.Mailer.Send(ctx, msg)
	s.Metrics.mail("password_reset", err)
	if err != nil {
		l.Error("failed to send reset email", slog.String("account_id", acc.ID), slog.Any("error", err))
		s.Metrics.reset("request", "delivery_failed")
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	l.Info("password reset requested", slog.String("account_id", acc.ID))
	s.Metrics.reset("request", "ok")
	return nil
}

// CompleteReset sets a new password if token is a live reset token for
// accountID. The hash is swapped conditionally on the one the token was
// checked against, so one token cannot win twice.
func (s *PasswordResetService) CompleteReset(ctx context.Context, accountID, token, newPassword string) error {
	l := slogx.FromContext(ctx)

	if newPassword == "" {
		return ErrInvalidInput
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.reset("complete", "not_found")
			return ErrNotFound
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	claims, err := s.Issuer.VerifyPasswordReset(token, acc.PasswordHash)
	if err != nil || claims.AccountID() != acc.ID {
		s.Metrics.reset("complete", "invalid_token")
		return ErrInvalidToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return ErrInvalidInput
		}
		return err
	}

	if err := s.Store.Accounts().SwapPasswordHash(ctx, acc.ID, acc.PasswordHash, hash); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			s.Metrics.reset("complete", "invalid_token")
			return ErrInvalidToken
		case errors.Is(err, store.ErrNotFound):
			return ErrNotFound
		default:
			return fmt.Errorf("failed to update password: %w", err)
		}
	}

	l.Info("password reset", slog.String("account_id", acc.ID))
	s.Metrics.reset("complete", "ok")

	msg, err := mail.PasswordResetDone(acc.Email)
	if err == nil {
		err = s.Mailer.Send(ctx, msg)
		s.Metrics.mail("password_reset_done", err)
	}
	if err != nil {
		l.Warn("failed to send reset confirmation", slog.String("account_id", acc.ID), slog.Any("error", err))
	}
	return nil
}
