package postgres

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

	getAccountByID    = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	accountExists     = `SELECT 1 FROM accounts WHERE id = $1`

	createAccount = `INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)`

	setRefreshToken = `UPDATE accounts SET refresh_token_hash = $2, updated_at = $3 WHERE id = $1`

	swapRefreshToken = `UPDATE accounts SET refresh_token_hash = $3, updated_at = $4
WHERE id = $1 AND refresh_token_hash = $2`

	swapPasswordHash = `UPDATE accounts SET password_hash = $3, updated_at = $4
WHERE id = $1 AND password_hash = $2`

	markEmailVerified = `UPDATE accounts SET email_verified_at = COALESCE(email_verified_at, $2), updated_at = $3
WHERE id = $1`
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
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	if _, err := r.db.ExecContext(ctx, createAccount, a.ID, a.Email, a.PasswordHash, createdAt); err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (r *accountsRepo) SetRefreshToken(ctx context.Context, id string, hash string) error {
	res, err := r.db.ExecContext(ctx, setRefreshToken, id, hash, r.now())
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	return requireRow(res)
}

func (r *accountsRepo) SwapRefreshToken(ctx context.Context, id string, expected string, next *string) error {
	var nextVal sql.NullString
	if next != nil {
		nextVal = sql.NullString{String: *next, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, swapRefreshToken, id, expected, nextVal, r.now())
	if err != nil {
		return fmt.Errorf("failed to swap refresh token: %w", err)
	}
	return r.casResult(ctx, res, id)
}

func (r *accountsRepo) SwapPasswordHash(ctx context.Context, id string, expected string, next string) error {
	res, err := r.db.ExecContext(ctx, swapPasswordHash, id, expected, next, r.now())
	if err != nil {
		return fmt.Errorf("failed to swap password hash: %w", err)
	}
	return r.casResult(ctx, res, id)
}

func (r *accountsRepo) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, markEmailVerified, id, at.UTC(), r.now())
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

	if refresh.Valid {
		a.RefreshTokenHash = &refresh.String
	}
	if verified.Valid {
		t := verified.Time.UTC()
		a.EmailVerifiedAt = &t
	}
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
