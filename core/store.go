package core

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// RecoveryPolicy decides what a store does when its backing medium is present but unreadable.
type RecoveryPolicy string

const (
	// RecoveryFail surfaces a *StorageError to the caller.
	RecoveryFail RecoveryPolicy = "fail"
	// RecoveryReseed sets the corrupt medium aside and starts over from the seed data.
	RecoveryReseed RecoveryPolicy = "reseed"
)

// StoreOptions are shared by every store implementation.
type StoreOptions struct {
	Logger      Logger
	Recovery    RecoveryPolicy
	LockTimeout time.Duration    // 0 waits until the context is done
	Now         func() time.Time // seed clock; defaults to time.Now
}

func (o StoreOptions) Clock() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// NewStoreOptions builds StoreOptions from the storage configuration.
func NewStoreOptions(conf *Config, logger Logger) StoreOptions {
	return StoreOptions{
		Logger:      logger,
		Recovery:    conf.Storage.Recovery,
		LockTimeout: conf.Storage.LockTimeout,
	}
}

const maxReaders = 1 << 30

// StoreLock is a readers/writer lock whose acquisition honors context cancellation
// and an optional timeout. A writer holds every unit of the semaphore, a reader holds one.
type StoreLock struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func NewStoreLock(timeout time.Duration) *StoreLock {
	return &StoreLock{sem: semaphore.NewWeighted(maxReaders), timeout: timeout}
}

func (l *StoreLock) acquire(parent context.Context, n int64) (func(), error) {
	ctx := parent
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, l.timeout)
		defer cancel()
	}
	if err := l.sem.Acquire(ctx, n); err != nil {
		// only the lock's own timeout means busy; the caller's deadline is theirs to report
		if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(ErrBusy, err.Error())
		}
		return nil, err
	}
	return func() { l.sem.Release(n) }, nil
}

// Lock acquires exclusive access. The returned func releases it.
func (l *StoreLock) Lock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, maxReaders)
}

// RLock acquires shared access. The returned func releases it.
func (l *StoreLock) RLock(ctx context.Context) (func(), error) {
	return l.acquire(ctx, 1)
}
