package lockx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisTTL   = 5 * time.Second
	DefaultRetryEvery = 25 * time.Millisecond
)

// releaseLua deletes the lock only if this owner still holds it.
var releaseLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker backed by SET NX PX. The TTL bounds how long a
// crashed holder can block others.
type RedisLocker struct {
	Client     redis.UniversalClient
	Prefix     string
	TTL        time.Duration
	RetryEvery time.Duration
	Logger     *slog.Logger
}

var _ Locker = (*RedisLocker)(nil)

func NewRedisLocker(client redis.UniversalClient, prefix string, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		Client:     client,
		Prefix:     prefix,
		TTL:        ttl,
		RetryEvery: DefaultRetryEvery,
		Logger:     logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.Prefix + key
	owner := uuid.NewString()

	ticker := time.NewTicker(l.RetryEvery)
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(ctx, redisKey, owner, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %q: %w", redisKey, err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
		}
	}

	return func() {
		// Release on a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := releaseLua.Run(releaseCtx, l.Client, []string{redisKey}, owner).Err(); err != nil {
			l.Logger.Warn("failed to release lock", "key", redisKey, "error", err)
		}
	}, nil
}
