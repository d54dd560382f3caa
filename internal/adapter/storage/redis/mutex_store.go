package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when this holder's token still
// owns it, so a release after TTL expiry cannot remove someone else's lock.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// acquireRetryDelay paces the polling loop between SET NX attempts.
const acquireRetryDelay = 20 * time.Millisecond

// MutexStore implements ports.MutexStore using Redis SET NX with a holder
// token. The TTL bounds how long a crashed holder can keep the lock.
type MutexStore struct {
	client *goredis.Client
	prefix string
}

// NewMutexStore creates a new Redis-backed mutex store.
func NewMutexStore(client *goredis.Client) *MutexStore {
	return &MutexStore{
		client: client,
		prefix: "mutex:",
	}
}

// Acquire tries to take the named lock, polling until maxWait elapses.
// acquired=false without an error means the lock stayed held the whole time;
// callers fall back rather than block further.
func (s *MutexStore) Acquire(ctx context.Context, name string, ttl time.Duration, maxWait time.Duration) (func(context.Context), bool, error) {
	key := s.prefix + name
	token := uuid.NewString()
	deadline := time.Now().Add(maxWait)

	for {
		ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("redis mutex acquire: %w", err)
		}
		if ok {
			return s.releaseFunc(key, token), true, nil
		}

		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(acquireRetryDelay):
		}
	}
}

func (s *MutexStore) releaseFunc(key, token string) func(context.Context) {
	return func(ctx context.Context) {
		// Best effort: an expired lock is already gone and the script is a no-op.
		_ = releaseScript.Run(ctx, s.client, []string{key}, token).Err()
	}
}
