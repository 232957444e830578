package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client. The same client serves
// the price cache and the job queue; the pool has to cover the worker pool's
// blocking BRPOPs plus request-path cache hits.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
