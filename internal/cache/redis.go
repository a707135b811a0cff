package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"StockPulse/internal/model"
)

const redisPrefix = "stockpulse:"

// RedisStore shares annotated series between processes. Expiry is left to
// Redis; a failing Redis degrades to cache misses.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr. It does not ping; use Ping to check.
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Get(ctx context.Context, key model.SeriesKey) (*model.Series, bool) {
	data, err := r.client.Get(ctx, redisPrefix+key.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[WARN] redis get %s: %v", key, err)
		}
		return nil, false
	}
	var s model.Series
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("[WARN] redis decode %s: %v", key, err)
		return nil, false
	}
	return &s, true
}

func (r *RedisStore) Set(ctx context.Context, key model.SeriesKey, s *model.Series) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("[WARN] redis encode %s: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, redisPrefix+key.String(), data, r.ttl).Err(); err != nil {
		log.Printf("[WARN] redis set %s: %v", key, err)
	}
}

// Close releases the client.
func (r *RedisStore) Close() error { return r.client.Close() }
