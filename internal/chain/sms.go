package chain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// TagSMS identifies the SMS channel handler.
const TagSMS = "SMS"

const (
	// smsBodyLimit is the single-segment character budget; longer bodies
	// are truncated to fit, ellipsis included.
	smsBodyLimit = 160

	// smsPendingChance is the probability that a normal-priority message
	// lands in the carrier queue instead of being confirmed immediately.
	smsPendingChance = 0.1
)

// E.164 shape
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// SMSConfig configures the simulated SMS gateway.
type SMSConfig struct {
	Provider     string
	SenderNumber string

	ImmediateLatency time.Duration
	StandardLatency  time.Duration
}

type smsChannel struct {
	cfg    SMSConfig
	env    Env
	logger *slog.Logger
}

// NewSMS creates an SMS handler wrapping inner.
func NewSMS(inner domain.Handler, cfg SMSConfig, env Env, logger *slog.Logger) *Link {
	if cfg.Provider == "" {
		cfg.Provider = "gateway"
	}
	if cfg.SenderNumber == "" {
		cfg.SenderNumber = "+15550100000"
	}
	if cfg.ImmediateLatency == 0 {
		cfg.ImmediateLatency = 50 * time.Millisecond
	}
	if cfg.StandardLatency == 0 {
		cfg.StandardLatency = 150 * time.Millisecond
	}
	env = env.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return newLink(&smsChannel{cfg: cfg, env: env, logger: logger}, inner, env, logger)
}

func (c *smsChannel) Tag() string { return TagSMS }

// Accepts matches the destination against an E.164 phone-number shape.
func (c *smsChannel) Accepts(req *domain.Request) bool {
	return phonePattern.MatchString(strings.TrimSpace(req.Destination))
}

func (c *smsChannel) Deliver(ctx context.Context, req *domain.Request) (*domain.Outcome, error) {
	body := truncateSMSBody(req.Body)

	c.logger.Info("sms transmitted",
		"provider", c.cfg.Provider,
		"from", c.cfg.SenderNumber,
		"to", req.Destination,
		"length", utf8.RuneCountInString(body),
		"priority", req.Priority,
	)

	latency := c.cfg.StandardLatency
	if req.Priority.Immediate() {
		latency = c.cfg.ImmediateLatency
	}
	if err := c.env.Sleep(ctx, latency); err != nil {
		return nil, fmt.Errorf("sms transmission interrupted: %w", err)
	}

	// Normal priority occasionally lands in the carrier queue; immediate
	// priorities are always confirmed synchronously.
	if req.Priority == domain.PriorityNormal && c.env.Jitter.Float64() < smsPendingChance {
		c.logger.Info("sms queued by carrier", "to", req.Destination)
		return domain.PendingOutcome(TagSMS, req.Destination, body, c.env.Clock.Now()), nil
	}

	return domain.SentOutcome(TagSMS, req.Destination, body, c.env.Clock.Now()), nil
}

// truncateSMSBody fits body into one SMS segment, replacing the overflow
// with an ellipsis marker. The limit counts characters, not bytes, so
// multi-byte bodies at or under the budget pass unchanged and truncation
// never cuts mid-character.
func truncateSMSBody(body string) string {
	if utf8.RuneCountInString(body) <= smsBodyLimit {
		return body
	}
	return string([]rune(body)[:smsBodyLimit-3]) + "..."
}
