package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/internal/auth/mail"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
)

// EmailVerificationService confirms that an account owns its address.
type EmailVerificationService struct {
	Store     store.Store
	Issuer    *jwtx.Issuer
	Mailer    mail.Sender
	ClientURL string
	Metrics   *Metrics

	// Now stamps email_verified_at. Defaults to time.Now.
	Now func() time.Time
}

// RequestVerification mails a verification link to the account's address.
// Already verified accounts get ErrConflict.
func (s *EmailVerificationService) RequestVerification(ctx context.Context, accountID string) error {
	l := slogx.FromContext(ctx)

	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	if acc.EmailVerified() {
		return ErrConflict
	}

	token, err := s.Issuer.IssueEmailVerify(acc.ID, acc.Email)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}

	msg, err := mail.VerifyEmail(acc.Email, joinURL(s.ClientURL, "verify-email", token), jwtx.EmailVerifyTTL)
	if err != nil {
		return err
	}

	err = s.Mailer.Send(ctx, msg)
	s.Metrics.mail("verify_email", err)
	if err != nil {
		l.Error("failed to send verification email", slog.String("account_id", acc.ID), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

// ConfirmVerification marks the token's account verified. Confirming twice
// keeps the first timestamp.
func (s *EmailVerificationService) ConfirmVerification(ctx context.Context, token string) (domain.Account, error) {
	claims, err := s.Issuer.VerifyEmailVerify(token)
	if err != nil {
		return domain.Account{}, ErrInvalidToken
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidToken
		}
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}

	// The link is only good for the address it was sent to.
	if claims.Email != acc.Email {
		return domain.Account{}, ErrInvalidToken
	}

	if err := s.Store.Accounts().MarkEmailVerified(ctx, acc.ID, s.now()); err != nil {
		return domain.Account{}, fmt.Errorf("failed to mark email verified: %w", err)
	}

	acc, err = s.Store.Accounts().GetAccountByID(ctx, acc.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("account_id", acc.ID))
	return acc, nil
}

func (s *EmailVerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
