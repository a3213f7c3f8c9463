package store

import (
	"context"
	"errors"
	"time"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by compare-and-swap writes when the stored
	// value no longer matches the expected one.
	ErrConflict = errors.New("store: conflicting update")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Accounts() Accounts

	ApplyMigrations(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is used during signin and reset requests. Emails are
	// stored normalised, callers pass the normalised form.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// SetRefreshToken overwrites the stored refresh fingerprint
	// unconditionally. Used on signin.
	SetRefreshToken(ctx context.Context, id string, hash string) error

	// SwapRefreshToken replaces the stored refresh fingerprint only if it
	// still equals expected. A nil next clears it. Returns ErrConflict when
	// the stored value moved on, ErrNotFound when the account is gone.
	SwapRefreshToken(ctx context.Context, id string, expected string, next *string) error

	// SwapPasswordHash replaces the password hash only if it still equals
	// expected. Returns ErrConflict or ErrNotFound like SwapRefreshToken.
	SwapPasswordHash(ctx context.Context, id string, expected string, next string) error

	// MarkEmailVerified stamps email_verified_at if it is not already set.
	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
}
