package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

const idempotencyKeyPrefix = "idempotency:"

// IdempotencyStore implements domain.IdempotencyStore using Redis
type IdempotencyStore struct {
	client *Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a new IdempotencyStore
func NewIdempotencyStore(client *Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		ttl:    ttl,
	}
}

func idempotencyKey(key string) string {
	return idempotencyKeyPrefix + key
}

// Get returns the outcome stored for a key, or domain.ErrNotFound when unseen
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*domain.Outcome, error) {
	data, err := s.client.client.Get(ctx, idempotencyKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}

	var outcome domain.Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}

	return &outcome, nil
}

// Put stores the outcome for a key with the configured TTL
func (s *IdempotencyStore) Put(ctx context.Context, key string, outcome *domain.Outcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	if err := s.client.client.Set(ctx, idempotencyKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}

	return nil
}
