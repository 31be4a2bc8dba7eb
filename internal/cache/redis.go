package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/af-corp/relay/internal/types"
)

const redisKeyPrefix = "relay:resp:"

// Redis is a Store backed by a shared Redis instance, for deployments that
// want replicas to share one response cache. Expiry rides on Redis TTLs;
// the capacity bound is left to Redis' own memory policy. All errors fail
// open as cache misses.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (*types.Result, bool) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var res types.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	res.Cached = true
	return &res, true
}

func (r *Redis) Put(ctx context.Context, key string, res *types.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	r.rdb.Set(ctx, redisKeyPrefix+key, data, r.ttl)
}
