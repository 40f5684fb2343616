package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// SeedLockKey builds the redis key guarding generation from one seed
// invoice. Holding it makes derive-then-advance atomic across workers.
func SeedLockKey(seedID int64) string {
	return fmt.Sprintf("billing:seed:%d:generate", seedID)
}

// ErrLockBusy indicates another worker holds the critical section.
var ErrLockBusy = errors.New("lock is held by another worker")

// Locker acquires short-lived distributed locks for generation critical
// sections.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewLocker wraps the redis client. ttl bounds how long a crashed holder
// can block other workers.
func NewLocker(rdb redis.UniversalClient, ttl time.Duration) *Locker {
	return &Locker{client: redislock.New(rdb), ttl: ttl}
}

// Acquire obtains the named lock without retrying. The returned release
// func is safe to call even after the lock has expired.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%w: %s", ErrLockBusy, key)
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}
