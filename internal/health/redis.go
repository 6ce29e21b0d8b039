package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChecker probes the Redis server used for event fan-out
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a checker on an existing client
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name implements Checker
func (c *RedisChecker) Name() string { return "redis" }

// Check implements Checker
func (c *RedisChecker) Check(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}
