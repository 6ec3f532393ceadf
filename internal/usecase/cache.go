package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheFetch loads a cached JSON value into dest. A nil client (memory
// store mode, tests) or any cache error reads as a miss.
func cacheFetch(ctx context.Context, rdb *redis.Client, key string, dest any) bool {
	if rdb == nil {
		return false
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// cacheStore writes a JSON value with a TTL, best effort
func cacheStore(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = rdb.Set(ctx, key, data, ttl).Err()
	}
}

// cacheDrop removes keys matching a pattern, best effort
func cacheDrop(ctx context.Context, rdb *redis.Client, pattern string) {
	if rdb == nil {
		return
	}
	iter := rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = rdb.Del(ctx, iter.Val()).Err()
	}
}
