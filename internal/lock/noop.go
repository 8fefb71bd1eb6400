package lock

import (
	"context"
	"time"
)

// NoopLocker implements Locker without any actual locking.
// Used when checkout serialization is disabled in configuration.
type NoopLocker struct{}

// NewNoopLocker creates a new no-op locker.
func NewNoopLocker() *NoopLocker {
	return &NoopLocker{}
}

// Acquire always succeeds.
func (n *NoopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

// AcquireWithRetry always succeeds.
func (n *NoopLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return true, nil
}

// Release always succeeds.
func (n *NoopLocker) Release(ctx context.Context, key string) (bool, error) {
	return true, nil
}

// IsHeld always reports not held.
func (n *NoopLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	return false, nil
}

var _ Locker = (*NoopLocker)(nil)
