// Package statestore persists pending OAuth authorization state across the
// redirect round trip so the PKCE code verifier never leaves the server.
package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jarvis-integrations-layer/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements ports.StateStore on Redis. Records live under a short
// TTL and are deleted on consumption, enforcing single-use.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed state store from a redis:// URL.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "oauth_state:", ttl: ttl}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "oauth_state:", ttl: ttl}
}

func (s *RedisStore) key(state string) string {
	return s.prefix + state
}

// Save stores the state record under the store's TTL.
func (s *RedisStore) Save(ctx context.Context, state *ports.AuthState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal auth state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.State), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	return nil
}

// Consume atomically retrieves and deletes the record. Returns nil, nil when
// the state is unknown, expired, or already consumed.
func (s *RedisStore) Consume(ctx context.Context, state string) (*ports.AuthState, error) {
	data, err := s.client.GetDel(ctx, s.key(state)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consume auth state: %w", err)
	}

	var record ports.AuthState
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal auth state: %w", err)
	}
	return &record, nil
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
