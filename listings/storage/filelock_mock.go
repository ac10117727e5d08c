package storage

import (
	"context"
	"sync"
	"time"
)

// MockFileLock is an in-memory FileLock. Setting Contended simulates a
// lock held by another process: every attempt reports "not acquired".
type MockFileLock struct {
	mu        sync.Mutex
	held      bool
	Contended bool
	LockErr   error

	Attempts int
	Releases int
}

// TryLockContext implements FileLock.TryLockContext
func (m *MockFileLock) TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attempts++
	switch {
	case m.LockErr != nil:
		return false, m.LockErr
	case m.Contended || m.held:
		return false, nil
	}
	m.held = true
	return true, nil
}

// Unlock implements FileLock.Unlock
func (m *MockFileLock) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Releases++
	m.held = false
	return nil
}

// Held reports whether the lock is currently held.
func (m *MockFileLock) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// MockFileLockFactory hands out one MockFileLock per path.
type MockFileLockFactory struct {
	mu    sync.Mutex
	locks map[string]*MockFileLock

	// Contended and LockErr seed every lock the factory creates.
	Contended bool
	LockErr   error
}

// NewMockFileLockFactory creates a new mock factory
func NewMockFileLockFactory() *MockFileLockFactory {
	return &MockFileLockFactory{locks: make(map[string]*MockFileLock)}
}

// New implements FileLockFactory.New
func (f *MockFileLockFactory) New(path string) FileLock {
	return f.Lock(path)
}

// Lock returns the mock lock for path, creating it on first use.
func (f *MockFileLockFactory) Lock(path string) *MockFileLock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if lock, ok := f.locks[path]; ok {
		return lock
	}
	lock := &MockFileLock{Contended: f.Contended, LockErr: f.LockErr}
	f.locks[path] = lock
	return lock
}
