package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when another run owns the lock
var ErrLockHeld = errors.New("lock is held by another run")

// LockStore is the atomic primitive a Locker is built on
type LockStore interface {
	SetIfAbsent(ctx context.Context, key, value string, expiration time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
}

// Locker hands out named, expiring, owner-checked locks
type Locker struct {
	store  LockStore
	prefix string
	ttl    time.Duration
}

// NewLocker creates a locker whose keys are namespaced by prefix
func NewLocker(store LockStore, prefix string, ttl time.Duration) *Locker {
	return &Locker{store: store, prefix: prefix, ttl: ttl}
}

// Lock is an acquired lock
type Lock struct {
	store LockStore
	key   string
	token string
}

// Acquire takes the named lock or returns ErrLockHeld
func (l *Locker) Acquire(ctx context.Context, name string) (*Lock, error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.store.SetIfAbsent(ctx, key, token, l.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{store: l.store, key: key, token: token}, nil
}

// Release gives the lock up. Releasing an expired or stolen lock is a no-op.
func (lk *Lock) Release(ctx context.Context) error {
	if lk == nil {
		return nil
	}
	_, err := lk.store.DeleteIfValue(ctx, lk.key, lk.token)
	return err
}
