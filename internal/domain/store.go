package domain

import (
	"context"
	"time"
)

// OutcomeFilter narrows outcome history queries.
type OutcomeFilter struct {
	Status    *Status
	Channel   *string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// OutcomeListResult is a page of recorded outcomes.
type OutcomeListResult struct {
	Outcomes   []*Outcome `json:"outcomes"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// OutcomeRepository persists the outcome of every dispatch for later
// inspection. Recording never influences chain semantics.
type OutcomeRepository interface {
	Record(ctx context.Context, outcome *Outcome) error
	GetByID(ctx context.Context, id string) (*Outcome, error)
	List(ctx context.Context, filter OutcomeFilter) (*OutcomeListResult, error)
}

// IdempotencyStore maps a caller-supplied key to the outcome recorded for
// it, so a repeated dispatch with the same key returns the original result
// without walking the chain again.
type IdempotencyStore interface {
	// Get returns the stored outcome, or ErrNotFound when the key is unseen.
	Get(ctx context.Context, key string) (*Outcome, error)
	Put(ctx context.Context, key string, outcome *Outcome) error
}

// RateLimiter bounds how many dispatches a key admits per window.
type RateLimiter interface {
	// Allow checks if a request is admitted under the limit.
	Allow(ctx context.Context, key string) (bool, error)

	// Wait blocks until a request is admitted or ctx is done.
	Wait(ctx context.Context, key string) error

	// CurrentRate returns the rate observed for key in the current window.
	CurrentRate(ctx context.Context, key string) (int64, error)
}
