package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// Options configures how a distributed lock is acquired and held.
type Options struct {
	// Expiry bounds how long a crashed holder can block the key.
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// holdMargin is added on top of a caller's work budget when sizing Expiry.
const holdMargin = 10 * time.Second

// DefaultOptions suits operations that make no outbound calls under the lock.
func DefaultOptions() Options {
	return Options{
		Expiry:     30 * time.Second,
		Tries:      20,
		RetryDelay: 100 * time.Millisecond,
	}
}

// OptionsFor sizes Expiry so the lock outlives work bounded by budget, such as
// a refund with all of its gateway retries.
func OptionsFor(budget time.Duration) Options {
	opts := DefaultOptions()
	if hold := budget + holdMargin; hold > opts.Expiry {
		opts.Expiry = hold
	}
	return opts
}

// RedisLocker is a Locker shared by every instance through Redis (RedLock).
type RedisLocker struct {
	redsync *redsync.Redsync
	opts    Options
	logger  *slog.Logger
}

// NewRedisLocker creates a RedisLocker on top of an existing go-redis client.
func NewRedisLocker(client goredislib.UniversalClient, opts Options, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		logger:  logger,
	}
}

var _ Locker = (*RedisLocker)(nil)

// WithLock executes fn while holding the Redis lock for key.
// The lock is released when fn returns, even on panic.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	mutex := l.redsync.NewMutex(
		"lock:"+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w: %v", key, ErrNotAcquired, err)
	}

	defer func() {
		// The holder's context may be done by now; unlocking must still happen.
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.logger.WarnContext(ctx, "failed to release lock", "key", key, "ok", ok, "error", err)
		}
	}()

	return fn()
}
