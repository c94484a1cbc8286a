package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoomLocker serializes the availability check and the booking write for a
// single room. Without it two concurrent requests can both pass the overlap
// check before either commits.
type RoomLocker interface {
	// Acquire blocks until the room lock is held or ctx is done. The returned
	// release func is safe to call once.
	Acquire(ctx context.Context, roomID string) (func(), error)
}

const (
	lockTTL       = 5 * time.Second
	lockRetryWait = 50 * time.Millisecond
)

// releaseScript deletes the key only when it still holds our token, so an
// expired lock re-acquired by another request is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisRoomLocker struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisRoomLocker returns a Redis-backed locker. When client is nil
// (Redis unreachable at startup) it degrades to an in-process locker, which
// is only safe for a single instance.
func NewRedisRoomLocker(client *redis.Client, log *zap.Logger) RoomLocker {
	if client == nil {
		log.Warn("Redis unavailable, falling back to in-process room locks")
		return newLocalRoomLocker()
	}
	return &redisRoomLocker{
		client: client,
		log:    log.With(zap.String("component", "room_lock")),
	}
}

func (l *redisRoomLocker) Acquire(ctx context.Context, roomID string) (func(), error) {
	key := "lock:room:" + roomID
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire room lock %s: %w", roomID, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire room lock %s: %w", roomID, ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Release outlives the request context.
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
				l.log.Warn("Failed to release room lock",
					zap.Error(err),
					zap.String("room_id", roomID),
				)
			}
		})
	}

	return release, nil
}

// localRoomLocker keys a mutex per room. Fallback for single-instance runs.
type localRoomLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLocalRoomLocker() *localRoomLocker {
	return &localRoomLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localRoomLocker) Acquire(ctx context.Context, roomID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[roomID] = m
	}
	l.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() {
		once.Do(m.Unlock)
	}, nil
}
