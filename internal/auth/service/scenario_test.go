package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSessionScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.sessions.Signup(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	_, err = env.sessions.Signup(ctx, "a@x.com", "p1")
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.sessions.Signin(ctx, "a@x.com", "bad")
	require.ErrorIs(t, err, ErrUnauthorized)

	pair, err := env.sessions.Signin(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	me, err := env.guard.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, acc.ID, me.ID)

	rotated, err := env.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.guard.Authenticate(ctx, rotated.AccessToken)
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Refreshes.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Refreshes.WithLabelValues("forbidden")))
	require.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Signins.WithLabelValues("bad_password")))
}
