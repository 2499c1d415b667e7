package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares attempt counters between service instances. The window
// starts at the first failure and expires with the key.
type Redis struct {
	policy Policy
	client *redis.Client
}

var _ Limiter = (*Redis)(nil)

func NewRedis(client *redis.Client, policy Policy) *Redis {
	return &Redis{policy: policy, client: client}
}

// NewRedisClient connects and pings a Redis server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (r *Redis) Allowed(ctx context.Context, key string) (bool, error) {
	if !r.policy.Enabled() {
		return true, nil
	}
	failures, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return failures < r.policy.MaxFailures, nil
}

func (r *Redis) RecordFailure(ctx context.Context, key string) error {
	if !r.policy.Enabled() {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, r.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis incr %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
