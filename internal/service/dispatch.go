package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// rateLimitKey buckets all dispatches into one sliding window.
const rateLimitKey = "dispatch"

// DispatchService walks a pre-assembled handler chain for each request and
// records the single outcome the chain returns. The chain itself stays
// synchronous and single-attempt; everything around it (history,
// idempotency, rate limiting, broadcast) is out-of-band and never changes
// the dispatch result.
type DispatchService struct {
	chain            domain.Handler
	outcomes         domain.OutcomeRepository
	idempotency      domain.IdempotencyStore
	rateLimiter      domain.RateLimiter
	logger           *slog.Logger
	outcomeBroadcast func(outcome *domain.Outcome)
	dispatchObserver func(channel, status string, duration time.Duration)
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	chain domain.Handler,
	outcomes domain.OutcomeRepository,
	idempotency domain.IdempotencyStore,
	rateLimiter domain.RateLimiter,
	logger *slog.Logger,
) *DispatchService {
	if chain == nil {
		panic("service: dispatch requires an assembled chain")
	}
	return &DispatchService{
		chain:       chain,
		outcomes:    outcomes,
		idempotency: idempotency,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SetOutcomeBroadcast sets the function used to publish recorded outcomes.
func (s *DispatchService) SetOutcomeBroadcast(fn func(outcome *domain.Outcome)) {
	s.outcomeBroadcast = fn
}

// SetDispatchObserver sets the function called with the delivering channel,
// final status and chain walk duration of every dispatch.
func (s *DispatchService) SetDispatchObserver(fn func(channel, status string, duration time.Duration)) {
	s.dispatchObserver = fn
}

// DispatchRequest represents a request to dispatch a notification.
type DispatchRequest struct {
	Destination    string
	Body           string
	Subject        string
	Sender         string
	Priority       domain.Priority
	ScheduledAt    *time.Time
	Attributes     map[string]string
	IdempotencyKey *string
}

// Dispatch walks the chain once and returns the reconciled outcome.
func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (*domain.Outcome, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, domain.ErrEmptyDestination
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityNormal
	}
	if !req.Priority.IsValid() {
		return nil, domain.NewValidationError("priority", "invalid priority")
	}

	if req.IdempotencyKey != nil {
		existing, err := s.idempotency.Get(ctx, *req.IdempotencyKey)
		if err == nil && existing != nil {
			s.logger.Debug("idempotency hit, returning recorded outcome",
				"key", *req.IdempotencyKey,
				"outcome_id", existing.ID,
			)
			return existing, nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
	}

	request := domain.NewRequest(req.Destination, req.Body)
	request.Subject = req.Subject
	if req.Sender != "" {
		request.Sender = req.Sender
	}
	request.Priority = req.Priority
	request.ScheduledAt = req.ScheduledAt
	request.Attributes = req.Attributes

	// A chain ending in the terminal recorder accepts every non-empty
	// destination, but the service does not assume its chain has one.
	if !s.chain.CanHandle(request) {
		return nil, domain.ErrChannelUnavailable
	}

	if request.Scheduled(time.Now().UTC()) {
		// Deferral belongs to an upstream scheduler; the chain itself is
		// synchronous and single-attempt.
		return nil, domain.ErrScheduledDispatch
	}

	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.Allow(ctx, rateLimitKey)
		if err != nil {
			s.logger.Warn("rate limiter unavailable, admitting request", "error", err)
		} else if !allowed {
			return nil, domain.ErrRateLimitExceeded
		}
	}

	start := time.Now()
	outcome := s.chain.Send(ctx, request)

	if s.dispatchObserver != nil {
		s.dispatchObserver(outcome.Channel, string(outcome.Status), time.Since(start))
	}

	if err := s.outcomes.Record(ctx, outcome); err != nil {
		s.logger.Error("failed to record outcome",
			"outcome_id", outcome.ID,
			"error", err,
		)
	}

	if req.IdempotencyKey != nil {
		if err := s.idempotency.Put(ctx, *req.IdempotencyKey, outcome); err != nil {
			s.logger.Error("failed to store idempotency key",
				"key", *req.IdempotencyKey,
				"error", err,
			)
		}
	}

	if s.outcomeBroadcast != nil {
		s.outcomeBroadcast(outcome)
	}

	s.logger.Info("notification dispatched",
		"outcome_id", outcome.ID,
		"channel", outcome.Channel,
		"status", outcome.Status,
		"succeeded", outcome.Succeeded,
		"destination", outcome.Destination,
	)

	return outcome, nil
}

// CanHandle probes whether any handler in the chain accepts the
// destination, without dispatching anything.
func (s *DispatchService) CanHandle(destination string) bool {
	return s.chain.CanHandle(domain.NewRequest(destination, ""))
}

// Channels returns the chain's composite description, outermost first.
func (s *DispatchService) Channels() string {
	return s.chain.Channels()
}

// GetOutcome returns one recorded outcome by ID.
func (s *DispatchService) GetOutcome(ctx context.Context, id string) (*domain.Outcome, error) {
	return s.outcomes.GetByID(ctx, id)
}

// ListOutcomes returns a page of recorded outcomes.
func (s *DispatchService) ListOutcomes(ctx context.Context, filter domain.OutcomeFilter) (*domain.OutcomeListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.outcomes.List(ctx, filter)
}
