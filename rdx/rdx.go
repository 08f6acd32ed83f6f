package rdx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Connect opens the shared Redis client. Redis is optional here; callers
// treat a nil Conn as "not configured" and fall back to Mongo.
func Connect(addr string) error {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	Conn = client
	return nil
}
