package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "storefront:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisKVStore keeps pricing settings in Redis so every BFF instance sees the same table
type RedisKVStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisKVStore connects to Redis and verifies the connection
func NewRedisKVStore(cfg RedisConfig) (*RedisKVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisKVStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisKVStoreWithClient wraps an existing client
func NewRedisKVStoreWithClient(client *redis.Client, keyPrefix string) *RedisKVStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisKVStore{client: client, keyPrefix: keyPrefix}
}

// Get returns the value stored under key
func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key without expiry
func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}

// List scans every key under prefix and fetches the values in one MGET
func (s *RedisKVStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	pattern := escapeGlob(s.keyPrefix+prefix) + "*"

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan settings %q: %w", prefix, err)
	}

	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %q: %w", prefix, err)
	}
	for i, raw := range values {
		// deleted between SCAN and MGET
		v, ok := raw.(string)
		if !ok {
			continue
		}
		out[strings.TrimPrefix(keys[i], s.keyPrefix)] = v
	}
	return out, nil
}

// Ping checks the connection
func (s *RedisKVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisKVStore) Close() error {
	return s.client.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ pricing.SettingsStore = (*RedisKVStore)(nil)
