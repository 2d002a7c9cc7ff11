// Package presence tracks which users currently hold a live connection, so
// push notifications only go to people who will not see the broadcast.
package presence

import (
	"context"
	"fmt"
	"sync"

	"github.com/kmcheng/discusshub-backend/env"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client
var once sync.Once

func getClient() *redis.Client {
	once.Do(func() {
		client = redis.NewClient(&redis.Options{Addr: env.REDIS_ADDR})
	})
	return client
}

func key(uid uint) string {
	return fmt.Sprintf("online:%d", uid)
}

func SetOnline(ctx context.Context, uid uint, ip string) error {
	return getClient().SAdd(ctx, key(uid), ip).Err()
}

func SetOffline(ctx context.Context, uid uint, ip string) error {
	return getClient().SRem(ctx, key(uid), ip).Err()
}

// IsOnline reports whether any of the user's devices is connected.
func IsOnline(ctx context.Context, uid uint) (bool, error) {
	n, err := getClient().SCard(ctx, key(uid)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
