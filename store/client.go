package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by RedisClient.Get when the key is absent or
// expired.
var ErrCacheMiss = errors.New("cache miss")

// RedisClient stores JSON-encoded values under a namespaced key. It exposes
// only the surface BotCache needs.
type RedisClient struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisClient(addr, password string, db int, prefix string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	return &RedisClient{rdb: rdb, prefix: prefix}, nil
}

func (r *RedisClient) key(parts ...string) string {
	return strings.Join(append([]string{r.prefix}, parts...), ":")
}

func (r *RedisClient) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(context.Background(), key, data, ttl).Err()
}

func (r *RedisClient) Get(key string, dest interface{}) error {
	data, err := r.rdb.Get(context.Background(), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisClient) Del(key string) error {
	return r.rdb.Del(context.Background(), key).Err()
}

func (r *RedisClient) Close() error {
	return r.rdb.Close()
}
