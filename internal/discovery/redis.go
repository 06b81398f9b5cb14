package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRegistryKey = "songsms:services"

// RedisLocator keeps the address book in a Redis hash so services can
// announce themselves on startup.
type RedisLocator struct {
	rdb *redis.Client
	key string
}

func NewRedisLocator(rdb *redis.Client) *RedisLocator {
	return &RedisLocator{rdb: rdb, key: defaultRegistryKey}
}

// Register announces name at url, replacing any previous address.
func (l *RedisLocator) Register(ctx context.Context, name, url string) error {
	if err := l.rdb.HSet(ctx, l.key, name, strings.TrimRight(url, "/")).Err(); err != nil {
		return fmt.Errorf("discovery: register %s: %w", name, err)
	}
	return nil
}

func (l *RedisLocator) Deregister(ctx context.Context, name string) error {
	return l.rdb.HDel(ctx, l.key, name).Err()
}

func (l *RedisLocator) Resolve(ctx context.Context, name string) (string, error) {
	url, err := l.rdb.HGet(ctx, l.key, name).Result()
	if errors.Is(err, redis.Nil) || (err == nil && url == "") {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	if err != nil {
		return "", fmt.Errorf("discovery: resolve %s: %w", name, err)
	}
	return url, nil
}
