package associations

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "docshare:example:"

// RedisRepository keeps associations in Redis so several server processes
// share one view.
type RedisRepository struct {
	client redis.Cmdable
}

func NewRedisRepository(client redis.Cmdable) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Get(ctx context.Context, example string) (string, bool, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+example).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (r *RedisRepository) Set(ctx context.Context, example, documentID string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+example, documentID, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, example string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+example).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
