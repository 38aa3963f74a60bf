// Package lock serializes work on a single key (an import order) across
// requests and, with Redis, across instances.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

// ErrNotObtained is returned when the key stays held for the whole wait budget.
var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held key.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains exclusive locks on keys.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// RedisLocker uses bsm/redislock. It polls every retryEvery until wait elapses.
type RedisLocker struct {
	client     *redislock.Client
	wait       time.Duration
	retryEvery time.Duration
}

func NewRedisLocker(client *redislock.Client, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, wait: wait, retryEvery: 50 * time.Millisecond}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	opts := &redislock.Options{RetryStrategy: redislock.NoRetry()}
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
		opts.RetryStrategy = redislock.LinearBackoff(l.retryEvery)
	}

	held, err := l.client.Obtain(ctx, key, ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return held, nil
}

// LocalLocker is an in-process Locker for single-instance deployments.
// ttl is ignored; the holder must Release.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{}), wait: wait}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	s := l.slot(key)
	select {
	case s <- struct{}{}:
		return &localLock{slot: s}, nil
	default:
	}
	if l.wait <= 0 {
		return nil, ErrNotObtained
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case s <- struct{}{}:
		return &localLock{slot: s}, nil
	case <-timer.C:
		return nil, ErrNotObtained
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type localLock struct {
	once sync.Once
	slot chan struct{}
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() { <-l.slot })
	return nil
}
