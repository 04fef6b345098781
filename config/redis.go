package config

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "RevokedToken:"

// NewRedisClient connects to REDIS_ADDRESS. Redis is optional here: it backs
// the rate limiter and the logout revocation list, so a nil client only
// disables those two features.
func NewRedisClient() (*redis.Client, error) {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// RevokeToken blacklists a bearer token until it would have expired anyway.
func RevokeToken(ctx context.Context, rdb *redis.Client, token string, ttl time.Duration) error {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, revokedTokenPrefix+token, "1", ttl).Err()
}

func IsTokenRevoked(ctx context.Context, rdb *redis.Client, token string) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revokedTokenPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
