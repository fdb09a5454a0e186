package ports

import (
	"context"
	"time"
)

// Locker provides per-key mutual exclusion across processes. TryLock is
// non-blocking; the lease bounds how long a crashed holder can keep the key.
type Locker interface {
	// TryLock returns an opaque holder token on success and ok=false without
	// error when the key is already held.
	TryLock(ctx context.Context, key string, lease time.Duration) (token string, ok bool, err error)

	// Unlock releases the key only if it is still held under the given token.
	Unlock(ctx context.Context, key, token string) error
}
