package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLocker(rdb, time.Minute)
}

func TestSeedLockKey(t *testing.T) {
	require.Equal(t, "billing:seed:42:generate", SeedLockKey(42))
}

func TestLockerMutualExclusion(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()
	key := SeedLockKey(7)

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key)
	require.ErrorIs(t, err, ErrLockBusy)

	release()

	release2, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	release2()
}

func TestLockerIndependentKeys(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, SeedLockKey(1))
	require.NoError(t, err)
	defer release1()

	release2, err := locker.Acquire(ctx, SeedLockKey(2))
	require.NoError(t, err)
	defer release2()
}
