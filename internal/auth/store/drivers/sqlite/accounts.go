package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/internal/auth/store"
)

const (
	accountColumns = `id, email, password_hash, refresh_token_hash, email_verified_at, created_at, updated_at`

	getAccountByID    = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	accountExists     = `SELECT 1 FROM accounts WHERE id = ?`

	createAccount = `INSERT INTO accounts (id, email, password_hash, refresh_token_hash, created_at, updated_at)
VALUES (?, ?, ?, NULL, ?, ?)`

	setRefreshToken = `UPDATE accounts SET refresh_token_hash = ?, updated_at = ? WHERE id = ?`

	swapRefreshToken = `UPDATE accounts SET refresh_token_hash = ?, updated_at = ?
WHERE id = ? AND refresh_token_hash = ?`

	swapPasswordHash = `UPDATE accounts SET password_hash = ?, updated_at = ?
WHERE id = ? AND password_hash = ?`

	markEmailVerified = `UPDATE accounts SET email_verified_at = COALESCE(email_verified_at, ?), updated_at = ?
WHERE id = ?`
)

type accountsRepo struct {
	db  dbtx
	now func() time.Time
}

var _ store.Accounts = (*accountsRepo)(nil)

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.scanOne(ctx, getAccountByID, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.scanOne(ctx, getAccountByEmail, email)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := r.now()
	if !a.CreatedAt.IsZero() {
		now = a.CreatedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, createAccount, a.ID, a.Email, a.PasswordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (r *accountsRepo) SetRefreshToken(ctx context.Context, id string, hash string) error {
	res, err := r.db.ExecContext(ctx, setRefreshToken, hash, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	return requireRow(res)
}

func (r *accountsRepo) SwapRefreshToken(ctx context.Context, id string, expected string, next *string) error {
	res, err := r.db.ExecContext(ctx, swapRefreshToken, mapOptionalString(next), r.now(), id, expected)
	if err != nil {
		return fmt.Errorf("failed to swap refresh token: %w", err)
	}
	return r.casResult(ctx, res, id)
}

func (r *accountsRepo) SwapPasswordHash(ctx context.Context, id string, expected string, next string) error {
	res, err := r.db.ExecContext(ctx, swapPasswordHash, next, r.now(), id, expected)
	if err != nil {
		return fmt.Errorf("failed to swap password hash: %w", err)
	}
	return r.casResult(ctx, res, id)
}

func (r *accountsRepo) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, markEmailVerified, at.UTC(), r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return requireRow(res)
}

func (r *accountsRepo) scanOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	var (
		a        domain.Account
		refresh  sql.NullString
		verified sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&refresh,
		&verified,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.RefreshTokenHash = mapNullStringPtr(refresh)
	a.EmailVerifiedAt = mapNullTimePtr(verified)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

// casResult turns a zero-row conditional update into ErrConflict, or
// ErrNotFound when the row itself is missing.
func (r *accountsRepo) casResult(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var one int
	if err := r.db.QueryRowContext(ctx, accountExists, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return store.ErrConflict
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
