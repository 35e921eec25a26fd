package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	appsync "github.com/erp/stocksync/internal/application/sync"
)

// runLockKeyPrefix namespaces run lock keys in Redis
const runLockKeyPrefix = "stocksync:run:"

// RedisRunLocker serializes sync runs per store with a Redis advisory lock.
// The TTL bounds how long a crashed process can keep a store locked; a live
// run finishing normally releases the lock explicitly.
type RedisRunLocker struct {
	locker *redislock.Client
}

// NewRedisRunLocker creates a run locker backed by the given Redis client
func NewRedisRunLocker(client redis.UniversalClient) *RedisRunLocker {
	return &RedisRunLocker{locker: redislock.New(client)}
}

// Acquire obtains the store's run lock. A store already locked by another
// run yields ErrRunInProgress.
func (l *RedisRunLocker) Acquire(ctx context.Context, storeID string, ttl time.Duration) (appsync.RunLock, error) {
	lock, err := l.locker.Obtain(ctx, runLockKeyPrefix+storeID, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, appsync.ErrRunInProgress
		}
		return nil, err
	}
	return &redisRunLock{lock: lock}, nil
}

type redisRunLock struct {
	lock *redislock.Lock
}

// Release releases the held lock. A lock that already expired is not an
// error worth surfacing.
func (l *redisRunLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}

// Ensure RedisRunLocker implements the application RunLocker interface
var _ appsync.RunLocker = (*RedisRunLocker)(nil)
