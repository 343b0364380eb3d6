package redisdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Key names under the prefix. Documents are JSON values in a hash keyed by
// id; book stock lives in its own hash so scripts can HINCRBY it.
const (
	KeyAuthors     = "authors"
	KeyBooks       = "books"
	KeyStock       = "stock"
	KeyISBN        = "isbn"
	KeyOrders      = "orders"
	KeyAuthorBooks = "author_books"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisClient is the Redis connection used as a document store.
type RedisClient struct {
	Client *redis.Client
	Prefix string
}

func NewRedisClient(cfg Config) *RedisClient {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "bookstore"
	}

	return &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		Prefix: prefix,
	}
}

// Key namespaces a key under the configured prefix.
func (r *RedisClient) Key(parts ...string) string {
	key := r.Prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func (r *RedisClient) Connect(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info().Str("addr", r.Client.Options().Addr).Msg("[REDIS] Connected")
	return nil
}

func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Reset deletes every key under the prefix.
func (r *RedisClient) Reset(ctx context.Context) error {
	iter := r.Client.Scan(ctx, 0, r.Prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.Client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisClient) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

const maxWatchRetries = 10

// ErrTooManyRetries is returned when optimistic transactions keep conflicting.
var ErrTooManyRetries = errors.New("redis: transaction retries exhausted")

// Watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changes before EXEC.
func (r *RedisClient) Watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := r.Client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooManyRetries
}
