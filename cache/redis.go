package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

var Rdb *redis.Client

// InitRedis initializes the Redis client.
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")

	if redisHost == "" {
		redisHost = "localhost"
	}
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)
	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Check the Redis connection
	ctx := context.Background()
	_, err := Rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	log.Println("Connected to Redis successfully.")
	return nil
}

// GetRedisClient returns the Redis client
func GetRedisClient() *redis.Client {
	return Rdb
}

// GetJSON loads a cached JSON payload into dest. The bool reports whether the
// key was present. A nil client means caching is disabled.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if Rdb == nil {
		return false, nil
	}
	raw, err := Rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON caches a JSON payload under key with the given TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if Rdb == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Rdb.Set(ctx, key, raw, ttl).Err()
}
