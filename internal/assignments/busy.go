package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/recruitdesk-backend/pkg/redis"
)

const busyScope = "reassign"

type lockKeyer interface {
	redis.LockStore
	LockKey(scope, id string) string
}

type redisBusyFlag struct {
	store lockKeyer
	ttl   time.Duration
}

// NewRedisBusyFlag backs the per-assignment busy flag with an owner-checked
// Redis lock. The TTL frees the flag if a request dies mid-flight.
func NewRedisBusyFlag(store lockKeyer, ttl time.Duration) (BusyFlag, error) {
	if store == nil {
		return nil, errors.New("redis store required")
	}
	if ttl <= 0 {
		return nil, errors.New("busy flag ttl must be positive")
	}
	return &redisBusyFlag{store: store, ttl: ttl}, nil
}

func (f *redisBusyFlag) Acquire(ctx context.Context, assignmentID uuid.UUID) (func(context.Context) error, bool, error) {
	lock, err := redis.NewLock(f.store, f.store.LockKey(busyScope, assignmentID.String()), f.ttl)
	if err != nil {
		return nil, false, err
	}
	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return lock.Release, true, nil
}
