package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dmrelay/internal/constants"
)

// releaseScript deletes the key only while it still holds the caller's stamp.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares entries between instances. Each entry is a key with
// TTL equal to the window, so an existing key means "still cooling down";
// expiry is measured by the Redis server clock, not by the now argument.
type RedisStore struct {
	client *redis.Client
	window time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		window: window,
		prefix: constants.CacheKeyPrefixCooldown,
	}
}

func (s *RedisStore) key(recipientID string) string {
	return s.prefix + recipientID
}

func stamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func (s *RedisStore) CheckAndRecord(ctx context.Context, recipientID string, now time.Time) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(recipientID), stamp(now), s.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, recipientID string, at time.Time) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.key(recipientID)}, stamp(at)).Err(); err != nil {
		return fmt.Errorf("redis release failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Last(ctx context.Context, recipientID string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, s.key(recipientID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get failed: %w", err)
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid cooldown entry %q: %w", val, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisStore) Size(ctx context.Context) (int, error) {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	count := 0
	for iter.Next(ctx) {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan failed: %w", err)
	}
	return count, nil
}
