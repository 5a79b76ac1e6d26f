package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const submissionKeyPrefix = "audit:submission:"

// RedisIdempotencyStore implements IdempotencyStore using Redis. Suitable for
// deployments where multiple instances must share processed submission IDs.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
func NewRedisIdempotencyStore(cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: submissionKeyPrefix,
	}, nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing Redis
// client. Useful for tests or when sharing a client across components.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = submissionKeyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a submission as processed with a TTL. SETNX makes the
// check-and-set atomic across instances.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, submissionID string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.keyPrefix+submissionID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark submission as processed: %w", err)
	}
	return fresh, nil
}

// IsProcessed checks if a submission has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, submissionID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+submissionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return exists > 0, nil
}

// Release removes a submission ID so a failed submission can be retried
func (s *RedisIdempotencyStore) Release(ctx context.Context, submissionID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+submissionID).Err(); err != nil {
		return fmt.Errorf("failed to release submission: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
