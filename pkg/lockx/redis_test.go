package lockx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, "lock:refresh:", time.Second, nil)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "acct-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("lock:refresh:acct-1"))

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "acct-1")
	require.ErrorIs(t, err, ErrNotAcquired)

	unlock()
	require.False(t, mr.Exists("lock:refresh:acct-1"))

	unlock2, err := l.Lock(ctx, "acct-1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerReleaseKeepsForeignOwner(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, "lock:", time.Second, nil)

	unlock, err := l.Lock(context.Background(), "acct-1")
	require.NoError(t, err)

	// The lease expired and someone else took the key.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:acct-1", "someone-else"))

	unlock()
	got, err := mr.Get("lock:acct-1")
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}

func TestRedisLockerWaitsForRelease(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLocker(client, "lock:", time.Second, nil)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "acct-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		unlock2, err := l.Lock(ctx, "acct-1")
		if err == nil {
			unlock2()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}
