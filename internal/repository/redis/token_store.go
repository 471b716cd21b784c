package redis

import (
	"context"
	"fmt"
	"time"

	"honeypot-service/internal/client"
)

const tokenKeyPrefix = "admin_token:"

// TokenStore keeps admin session tokens in Redis with a TTL, so tokens
// survive restarts and are shared across replicas.
type TokenStore struct {
	redis *client.RedisClient
}

// NewTokenStore creates a Redis-backed token store.
func NewTokenStore(redisClient *client.RedisClient) *TokenStore {
	return &TokenStore{redis: redisClient}
}

// Save stores the token with the given TTL.
func (s *TokenStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.redis.Client.Set(ctx, tokenKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to save admin token: %w", err)
	}
	return nil
}

// Exists reports whether the token is still live; Redis expiry handles TTL.
func (s *TokenStore) Exists(ctx context.Context, token string) (bool, error) {
	count, err := s.redis.Client.Exists(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check admin token: %w", err)
	}
	return count > 0, nil
}
