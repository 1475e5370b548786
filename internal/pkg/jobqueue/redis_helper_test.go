package jobqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lipsense/portal/internal/pkg/env"
)

const isolatedJobQueueTestRedisDB = 14

// newTestRedis returns a client on an isolated database or skips the test
// when no Redis is reachable.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379"))
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       isolatedJobQueueTestRedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", err)
	}

	resetJobQueueRedis(t, client)
	t.Cleanup(func() {
		resetJobQueueRedis(t, client)
		_ = client.Close()
	})
	return client
}

func resetJobQueueRedis(t *testing.T, client *redis.Client) {
	t.Helper()

	ctx := context.Background()
	keys := []string{JobQueueKey, JobProcessingKey, JobStatsKey}

	iter := client.Scan(ctx, 0, JobKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("failed to scan redis keys: %v", err)
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		t.Fatalf("failed to cleanup redis keys: %v", err)
	}
}
