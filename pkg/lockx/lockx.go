// Package lockx provides per-key mutual exclusion, either inside one
// process or across instances sharing a Redis.
package lockx

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the context ends before the lock is held.
var ErrNotAcquired = errors.New("lockx: lock not acquired")

// Locker serialises work per key. The returned unlock must be called exactly
// once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
