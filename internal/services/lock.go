package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Unlock releases a lock obtained from a Locker.
type Unlock func() error

// Locker serialises mutations that share a key. Reads never take it.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// NoopLocker is the unlocked fast path: concurrent read-modify-write cycles on
// the same owner may overwrite each other.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (Unlock, error) {
	return func() error { return nil }, nil
}

// KeyedMutex serialises mutations per key within one process.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{sem: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-l.sem
			m.release(key, l)
		})
		return nil
	}, nil
}

func (m *KeyedMutex) release(key string, l *keyedLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

// ErrLockNotHeld is returned on unlock when the lock expired and was taken by someone else.
var ErrLockNotHeld = errors.New("lock not held")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises mutations per key across instances with SET NX PX.
// A holder that outlives ttl loses the lock, so ttl must exceed the slowest
// expected mutation.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		prefix: "lock:",
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", redisKey, err)
		}
		if ok {
			break
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return func() error {
		// Release even if the request context is already cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
		if err != nil {
			return fmt.Errorf("release %s: %w", redisKey, err)
		}
		if n == 0 {
			return fmt.Errorf("release %s: %w", redisKey, ErrLockNotHeld)
		}
		return nil
	}, nil
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
