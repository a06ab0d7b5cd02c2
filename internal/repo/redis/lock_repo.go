package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockRetry = 50 * time.Millisecond
	lockKeyPrefix    = "moderator:lock:"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepo implements per-entity locks as Redis leases so several bot
// replicas serialize on the same complaint or user.
type LockRepo struct {
	client *goredis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewLockRepo(client *goredis.Client, ttl time.Duration) *LockRepo {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &LockRepo{client: client, ttl: ttl, retry: defaultLockRetry}
}

func (r *LockRepo) Lock(ctx context.Context, key string) (func(), error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("lock key is required")
	}

	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		acquired, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("wait for lock %s: %w", key, ctxErr)
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if acquired {
			break
		}

		timer := time.NewTimer(r.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("wait for lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			// A failed release is left to expire after ttl.
			_ = releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err()
		})
	}, nil
}
