package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apprequisition "github.com/buildflow/backend/internal/application/requisition"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore implements the workflow's ConfirmationTokenStore using
// Redis. Suitable for distributed deployments where the attempt and the
// confirmation can land on different instances.
type RedisTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisTokenStore creates a new Redis-backed token store and verifies
// the connection
func NewRedisTokenStore(cfg RedisConfig) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenStore{
		client:    client,
		keyPrefix: "requisition:warning:",
	}, nil
}

// NewRedisTokenStoreWithClient creates a store with an existing Redis client
func NewRedisTokenStoreWithClient(client *redis.Client, keyPrefix string) *RedisTokenStore {
	if keyPrefix == "" {
		keyPrefix = "requisition:warning:"
	}
	return &RedisTokenStore{client: client, keyPrefix: keyPrefix}
}

// Put stores the token under its key with the given TTL
func (s *RedisTokenStore) Put(ctx context.Context, token apprequisition.ConfirmationToken, ttl time.Duration) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation token: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+token.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store confirmation token: %w", err)
	}
	return nil
}

// Take retrieves and consumes the token atomically with GETDEL, so a token
// can be confirmed at most once even under concurrent requests
func (s *RedisTokenStore) Take(ctx context.Context, key string) (apprequisition.ConfirmationToken, bool, error) {
	payload, err := s.client.GetDel(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apprequisition.ConfirmationToken{}, false, nil
	}
	if err != nil {
		return apprequisition.ConfirmationToken{}, false, fmt.Errorf("failed to take confirmation token: %w", err)
	}

	var token apprequisition.ConfirmationToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return apprequisition.ConfirmationToken{}, false, fmt.Errorf("failed to unmarshal confirmation token: %w", err)
	}
	return token, true, nil
}

// Close closes the Redis client
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
