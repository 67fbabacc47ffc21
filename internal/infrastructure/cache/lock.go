package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Locker hands out short-lived named locks. A process-local lock is always
// taken; when Redis is reachable a SET NX key extends it across replicas.
type Locker struct {
	redis *Redis
	local sync.Map
}

func NewLocker(r *Redis) *Locker {
	return &Locker{redis: r}
}

// TryLock returns ok=false when someone else holds key. The returned unlock
// is safe to call once the lock is held and is a no-op otherwise.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	if _, held := l.local.LoadOrStore(key, token); held {
		return func() {}, false, nil
	}
	releaseLocal := func() { l.local.CompareAndDelete(key, token) }

	if l.redis.isUnavailable() {
		return releaseLocal, true, nil
	}

	ok, err := l.redis.SetIfNotExists(ctx, key, token, ttl)
	if err != nil {
		// Redis went away mid-flight; the local lock still protects this process.
		return releaseLocal, true, nil
	}
	if !ok {
		releaseLocal()
		return func() {}, false, nil
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.redis.deleteIfValue(ctx, key, token); err != nil {
			l.redis.warnUnavailableOnce(err)
		}
		releaseLocal()
	}, true, nil
}
