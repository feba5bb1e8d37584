package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the Redis instance backing the credential-route
// rate limiter and verifies it is reachable before the server starts.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
