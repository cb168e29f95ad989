package service

import (
	"context"
	"sync"
	"time"

	"chart-coach-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PendingGuard enforces one outstanding coach reply per session.
type PendingGuard interface {
	// Acquire fails with a busy error when the session already awaits a reply.
	// The returned release func is safe to call more than once.
	Acquire(ctx context.Context, sessionID uuid.UUID) (release func(), err error)
	Pending(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

type memoryPendingGuard struct {
	mu      sync.Mutex
	pending map[uuid.UUID]struct{}
}

func NewMemoryPendingGuard() PendingGuard {
	return &memoryPendingGuard{pending: make(map[uuid.UUID]struct{})}
}

func (g *memoryPendingGuard) Acquire(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[sessionID]; busy {
		return nil, apperror.Busy(sessionID)
	}
	g.pending[sessionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, sessionID)
			g.mu.Unlock()
		})
	}, nil
}

func (g *memoryPendingGuard) Pending(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.pending[sessionID]
	return busy, nil
}

const pendingKeyPrefix = "coach:pending:"

// Deletes the key only while it still holds our token, so an expired and
// re-acquired slot is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Extends the lease only while the key still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type redisPendingGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisPendingGuard shares the guard across instances. ttl bounds how long a
// crashed holder can keep a session busy; a live holder renews its lease every
// ttl/3 until it releases.
func NewRedisPendingGuard(rdb *redis.Client, ttl time.Duration) PendingGuard {
	return &redisPendingGuard{rdb: rdb, ttl: ttl}
}

func (g *redisPendingGuard) Acquire(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	key := pendingKeyPrefix + sessionID.String()
	token := uuid.NewString()

	ok, err := g.rdb.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, apperror.Storage("acquire reply slot", err)
	}
	if !ok {
		return nil, apperror.Busy(sessionID)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go g.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			// The request context may already be gone.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, g.rdb, []string{key}, token).Err()
		})
	}, nil
}

// keepAlive stops on release or once the key is no longer ours.
func (g *redisPendingGuard) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := g.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			renewCtx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := renewScript.Run(renewCtx, g.rdb, []string{key}, token, g.ttl.Milliseconds()).Int()
			cancel()
			if err == nil && n == 0 {
				return
			}
		}
	}
}

func (g *redisPendingGuard) Pending(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := g.rdb.Exists(ctx, pendingKeyPrefix+sessionID.String()).Result()
	if err != nil {
		return false, apperror.Storage("read reply slot", err)
	}
	return n > 0, nil
}
