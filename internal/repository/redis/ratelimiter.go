package redis

import (
	"context"
	"fmt"
	"time"
)

const (
	rateLimitKeyPrefix = "ratelimit:"
	rateLimitWindow    = time.Second
)

// RateLimiter implements domain.RateLimiter using a Redis sliding window
type RateLimiter struct {
	client      *Client
	limitPerSec int
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(client *Client, limitPerSec int) *RateLimiter {
	return &RateLimiter{
		client:      client,
		limitPerSec: limitPerSec,
	}
}

// rateLimitKey returns the Redis key for rate limiting
func rateLimitKey(key string) string {
	return rateLimitKeyPrefix + key
}

// Allow checks if a request is admitted under the rate limit using a sliding window
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rateLimitKey(key)
	now := time.Now()
	windowStart := now.Add(-rateLimitWindow)

	pipe := r.client.client.Pipeline()

	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))

	// Count current entries in the window
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	currentCount := countCmd.Val()
	if currentCount >= int64(r.limitPerSec) {
		return false, nil
	}

	// Add new entry with current timestamp as score
	if err := r.client.client.ZAdd(ctx, redisKey, struct {
		Score  float64
		Member any
	}{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	}).Err(); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	// Set expiry on the key
	r.client.client.Expire(ctx, redisKey, 2*rateLimitWindow)

	return true, nil
}

// Wait blocks until a request is admitted
func (r *RateLimiter) Wait(ctx context.Context, key string) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			allowed, err := r.Allow(ctx, key)
			if err != nil {
				return err
			}
			if allowed {
				return nil
			}
		}
	}
}

// CurrentRate returns the rate observed for a key in the current window
func (r *RateLimiter) CurrentRate(ctx context.Context, key string) (int64, error) {
	redisKey := rateLimitKey(key)
	now := time.Now()
	windowStart := now.Add(-rateLimitWindow)

	// Remove old entries and count
	pipe := r.client.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to get current rate: %w", err)
	}

	return countCmd.Val(), nil
}
