package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmailVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.sessions.Signup(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.False(t, acc.EmailVerified())

	require.NoError(t, env.verify.RequestVerification(ctx, acc.ID))
	msg := env.outbox.last(t)
	require.Equal(t, "a@x.com", msg.To)
	token := linkToken(t, msg.Text, testClientURL+"/verify-email/")

	verified, err := env.verify.ConfirmVerification(ctx, token)
	require.NoError(t, err)
	require.True(t, verified.EmailVerified())
	first := *verified.EmailVerifiedAt

	env.clock.Advance(time.Minute)
	again, err := env.verify.ConfirmVerification(ctx, token)
	require.NoError(t, err)
	require.True(t, again.EmailVerifiedAt.Equal(first))

	require.ErrorIs(t, env.verify.RequestVerification(ctx, acc.ID), ErrConflict)
}

func TestEmailVerificationErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.ErrorIs(t, env.verify.RequestVerification(ctx, "missing"), ErrNotFound)

	_, err := env.verify.ConfirmVerification(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := env.issuer.IssueEmailVerify("ghost", "ghost@x.com")
	require.NoError(t, err)
	_, err = env.verify.ConfirmVerification(ctx, ghost)
	require.ErrorIs(t, err, ErrInvalidToken)

	acc, err := env.sessions.Signup(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	wrongAddr, err := env.issuer.IssueEmailVerify(acc.ID, "other@x.com")
	require.NoError(t, err)
	_, err = env.verify.ConfirmVerification(ctx, wrongAddr)
	require.ErrorIs(t, err, ErrInvalidToken)

	stale, err := env.issuer.IssueEmailVerify(acc.ID, acc.Email)
	require.NoError(t, err)
	env.clock.Advance(16 * time.Minute)
	_, err = env.verify.ConfirmVerification(ctx, stale)
	require.ErrorIs(t, err, ErrInvalidToken)
}
