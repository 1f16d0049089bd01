package chain

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// TagLog identifies the terminal recording handler.
const TagLog = "LOG"

const defaultTerminalLatency = 50 * time.Millisecond

// TerminalConfig configures the innermost handler of a chain.
type TerminalConfig struct {
	SystemName string
	Latency    time.Duration
}

// Terminal is the base case of every chain. It records the request to its
// logging sink and always succeeds, provided a destination is present; a
// missing destination is the only way it fails.
type Terminal struct {
	systemName string
	latency    time.Duration
	env        Env
	logger     *slog.Logger
}

// NewTerminal creates the terminal handler. The logger doubles as the
// recording sink, so tests can capture what was recorded.
func NewTerminal(cfg TerminalConfig, env Env, logger *slog.Logger) *Terminal {
	if cfg.SystemName == "" {
		cfg.SystemName = "dispatch-chain"
	}
	if cfg.Latency == 0 {
		cfg.Latency = defaultTerminalLatency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{
		systemName: cfg.SystemName,
		latency:    cfg.Latency,
		env:        env.withDefaults(),
		logger:     logger,
	}
}

// CanHandle accepts any request carrying a non-empty destination.
func (t *Terminal) CanHandle(req *domain.Request) bool {
	return strings.TrimSpace(req.Destination) != ""
}

// Channels returns the terminal tag.
func (t *Terminal) Channels() string { return TagLog }

// Send records the notification and returns a sent outcome.
func (t *Terminal) Send(ctx context.Context, req *domain.Request) *domain.Outcome {
	if !t.CanHandle(req) {
		return domain.FailedOutcome(TagLog, req.Destination, req.Body,
			"destination must not be empty", t.env.Clock.Now())
	}

	t.logger.Info("notification recorded",
		"system", t.systemName,
		"destination", req.Destination,
		"priority", req.Priority,
		"body", req.Body,
	)

	if err := t.env.Sleep(ctx, t.latency); err != nil {
		return domain.FailedOutcome(TagLog, req.Destination, req.Body,
			"recording interrupted: "+err.Error(), t.env.Clock.Now())
	}

	return domain.SentOutcome(TagLog, req.Destination, req.Body, t.env.Clock.Now())
}
