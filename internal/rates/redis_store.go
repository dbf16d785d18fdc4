package rates

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rates:v1:"

// RedisStore shares fetched entries between processes. Keys expire after ttl;
// the cache still checks FetchedAt against its own clock.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a shared tier backed by client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads the entry for currency, reporting false when absent.
func (s *RedisStore) Get(ctx context.Context, currency string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+currency).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Put stores entry with the configured expiry.
func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+entry.Currency, payload, s.ttl).Err()
}
