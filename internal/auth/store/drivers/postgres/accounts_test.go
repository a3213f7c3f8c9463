package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*accountsRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return &accountsRepo{db: db, now: func() time.Time { return fixedNow }}, mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "refresh_token_hash", "email_verified_at", "created_at", "updated_at",
	})
}

func TestGetAccountByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE id = $1`)).
		WithArgs("acc-1").
		WillReturnRows(accountRows().AddRow("acc-1", "a@x.com", "hash", "fp", nil, fixedNow, fixedNow))

	a, err := repo.GetAccountByID(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", a.Email)
	require.NotNil(t, a.RefreshTokenHash)
	require.Equal(t, "fp", *a.RefreshTokenHash)
	require.Nil(t, a.EmailVerifiedAt)
}

func TestGetAccountByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE email = $1`)).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAccountByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateAccountDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs("acc-1", "a@x.com", "hash", fixedNow).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := repo.CreateAccount(context.Background(), domain.Account{ID: "acc-1", Email: "a@x.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSwapRefreshToken(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE accounts SET refresh_token_hash`).
			WithArgs("acc-1", "old", sql.NullString{String: "new", Valid: true}, fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		next := "new"
		require.NoError(t, repo.SwapRefreshToken(context.Background(), "acc-1", "old", &next))
	})

	t.Run("cleared", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE accounts SET refresh_token_hash`).
			WithArgs("acc-1", "old", sql.NullString{}, fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SwapRefreshToken(context.Background(), "acc-1", "old", nil))
	})

	t.Run("stale value conflicts", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE accounts SET refresh_token_hash`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM accounts WHERE id = $1`)).
			WithArgs("acc-1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		next := "new"
		err := repo.SwapRefreshToken(context.Background(), "acc-1", "old", &next)
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("missing account", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE accounts SET refresh_token_hash`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM accounts WHERE id = $1`)).
			WithArgs("acc-1").
			WillReturnError(sql.ErrNoRows)

		err := repo.SwapRefreshToken(context.Background(), "acc-1", "old", nil)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSwapPasswordHashConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE accounts SET password_hash`).
		WithArgs("acc-1", "old-hash", "new-hash", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM accounts WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	err := repo.SwapPasswordHash(context.Background(), "acc-1", "old-hash", "new-hash")
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestMarkEmailVerifiedMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE accounts SET email_verified_at`).
		WithArgs("acc-1", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkEmailVerified(context.Background(), "acc-1", fixedNow)
	require.ErrorIs(t, err, store.ErrNotFound)
}
