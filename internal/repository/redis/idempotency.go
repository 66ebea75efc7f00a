package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "kafka:processed:"

// IdempotencyStore records processed event ids so redelivered events are
// handled once. It satisfies kafka.IdempotencyStore.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a store whose claims expire after ttl.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim marks eventID as processed. It returns false when another delivery
// already claimed it.
func (s *IdempotencyStore) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, processedKeyPrefix+eventID, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", eventID, err)
	}
	return ok, nil
}

// Release forgets eventID so a failed handler can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, processedKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", eventID, err)
	}
	return nil
}
