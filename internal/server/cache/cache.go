// Package cache keeps recently authenticated users in Redis so the auth
// gate does not hit the database on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss means the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "itemkeeper:user:"

// UserCache is what the session service needs from a cache.
type UserCache interface {
	Get(ctx context.Context, userID string) (*models.PublicUser, error)
	Set(ctx context.Context, user *models.PublicUser) error
	Del(ctx context.Context, userID string) error
}

// client is the subset of *redis.Client used here.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisUserCache stores PublicUser values as JSON with a fixed TTL.
type RedisUserCache struct {
	client client
	ttl    time.Duration
}

func NewRedisUserCache(c *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: c, ttl: ttl}
}

// Connect dials Redis and pings it.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

func (c *RedisUserCache) Get(ctx context.Context, userID string) (*models.PublicUser, error) {
	data, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var u models.PublicUser
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}

func (c *RedisUserCache) Set(ctx context.Context, user *models.PublicUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+user.ID, data, c.ttl).Err()
}

func (c *RedisUserCache) Del(ctx context.Context, userID string) error {
	return c.client.Del(ctx, keyPrefix+userID).Err()
}
