package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/lipsense/portal/internal/pkg/env"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Store is the subset of Redis the portal uses. Dashboard reads and the
// checkout lock depend on this instead of the concrete client.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	// DeleteIfValue removes key only while it still holds value and reports
	// whether it did.
	DeleteIfValue(ctx context.Context, key string, value string) (bool, error)
}

var (
	client    *redis.Client
	setupDone bool
)

// SetupCache connects to the Redis server (DB 0). Sessions live in DB 1.
// The client stays nil when the server does not answer.
func SetupCache() {
	setupDone = true
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] could not connect to redis at %s:%s: %v", host, port, err)
		_ = rdb.Close()
		client = nil
		return
	}
	log.Infof("[Cache] connected to redis: %s", pong)
	client = rdb
}

// GetClient returns the Redis client instance, or nil when Redis is down.
func GetClient() *redis.Client {
	if !setupDone {
		SetupCache()
	}
	return client
}

// Default wraps the shared client as a Store.
func Default() Store {
	if client := GetClient(); client != nil {
		return NewRedisStore(client)
	}
	log.Warn("[Cache] redis not connected, using in-process cache")
	return NewMemory()
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// SetNX sets the key only if it is absent and reports whether it did.
func (s *RedisStore) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// compareAndDelete runs atomically on the server so a lock that expired and
// was taken by someone else is left alone.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *RedisStore) DeleteIfValue(ctx context.Context, key string, value string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, s.rdb, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
