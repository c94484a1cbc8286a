package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel-booking/pkg/utils"
)

// NewRedisClient connects to Redis using the application config. Returns nil
// when the server cannot be reached; callers degrade to in-process locking.
func NewRedisClient(config utils.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}

	return client
}
