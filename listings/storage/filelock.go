package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/listings/types"
	"github.com/gofrs/flock"
)

// FileLock defines the interface for file locking operations
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock with retries
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// Unlock releases the lock
	Unlock() error
}

// FileLockFactory creates FileLock instances
type FileLockFactory interface {
	// New creates a new FileLock for the given path
	New(path string) FileLock
}

// FlockWrapper wraps github.com/gofrs/flock for our interface
type FlockWrapper struct {
	flock *flock.Flock
}

// TryLockContext implements FileLock.TryLockContext
func (f *FlockWrapper) TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error) {
	return f.flock.TryLockContext(ctx, retryInterval)
}

// Unlock implements FileLock.Unlock
func (f *FlockWrapper) Unlock() error {
	return f.flock.Unlock()
}

// FlockFactory is the default factory implementation using flock
type FlockFactory struct{}

// New implements FileLockFactory.New
func (FlockFactory) New(path string) FileLock {
	return &FlockWrapper{
		flock: flock.New(path),
	}
}

const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// withLock runs fn while holding lock. Another process holding the lock
// past the timeout makes the call fail with ErrFileUnavailable.
func withLock(lock FileLock, fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	if err := acquire(ctx, lock); err != nil {
		return fmt.Errorf("%w: %w", types.ErrFileUnavailable, err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func acquire(ctx context.Context, lock FileLock) error {
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return fmt.Errorf("failed to acquire lock after %d attempts", lockMaxRetries)
}
