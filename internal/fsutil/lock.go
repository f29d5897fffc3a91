package fsutil

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long a caller waits to acquire the
// sequencer's advisory lockfile before giving up.
const DefaultLockTimeout = 5 * time.Second

// WithLock acquires an exclusive advisory lock on path+".lock", runs fn,
// and releases the lock once fn returns. It guards the sequencer's output
// directory against a second, concurrent run against the same PR.
func WithLock(path string, timeout time.Duration, fn func() error) error {
	lockPath := path + ".lock"
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("another run is already in progress (lock held on %s)", lockPath)
	}
	defer fileLock.Unlock()

	return fn()
}
