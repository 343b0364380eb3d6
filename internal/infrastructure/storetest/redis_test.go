//go:build integration
// +build integration

package storetest_test

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"

	"bookstore-api/internal/infrastructure/redisdb"
	"bookstore-api/internal/infrastructure/storetest"
)

func startRedisDockerContainer(t *testing.T) string {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Failed to start Dockertest: %+v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.2-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	})

	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	return addr
}

func TestRedisConformance(t *testing.T) {
	addr := startRedisDockerContainer(t)

	storetest.RunConformance(t, func(t *testing.T) storetest.Stores {
		// A fresh prefix per subtest keeps their keys apart.
		rdb := redisdb.NewRedisClient(redisdb.Config{Addr: addr, Prefix: "test-" + uuid.NewString()[:8]})
		t.Cleanup(func() {
			_ = rdb.Reset(context.Background())
			_ = rdb.Close()
		})
		return storetest.RedisStores(rdb)
	})
}
