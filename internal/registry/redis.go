package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v9"
)

// RedisStore keeps values as plain string keys, prefixed with a namespace.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore connects to the given addresses. An empty namespace stores
// keys unprefixed.
func NewRedisStore(addrs []string, namespace string) *RedisStore {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: addrs,
	})
	return NewRedisStoreWithClient(client, namespace)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) namespaced(key string) string {
	if s.namespace == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.namespace, key)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.namespaced(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get %s: %w", s.namespaced(key), err)
	}
	return value, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.namespaced(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.namespaced(key), err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
