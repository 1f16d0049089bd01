package chain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// TagEmail identifies the email channel handler.
const TagEmail = "EMAIL"

// local-part @ domain-with-dot
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// EmailConfig configures the simulated SMTP transport.
type EmailConfig struct {
	SMTPHost string
	SMTPPort int
	Sender   string

	// ImmediateLatency applies to high/urgent priority, StandardLatency
	// to everything else.
	ImmediateLatency time.Duration
	StandardLatency  time.Duration
}

type emailChannel struct {
	cfg    EmailConfig
	env    Env
	logger *slog.Logger
}

// NewEmail creates an email handler wrapping inner.
func NewEmail(inner domain.Handler, cfg EmailConfig, env Env, logger *slog.Logger) *Link {
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = "smtp.example.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if cfg.Sender == "" {
		cfg.Sender = "noreply@example.com"
	}
	if cfg.ImmediateLatency == 0 {
		cfg.ImmediateLatency = 100 * time.Millisecond
	}
	if cfg.StandardLatency == 0 {
		cfg.StandardLatency = 200 * time.Millisecond
	}
	env = env.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return newLink(&emailChannel{cfg: cfg, env: env, logger: logger}, inner, env, logger)
}

func (c *emailChannel) Tag() string { return TagEmail }

// Accepts matches the destination against an email-address shape. A
// mismatch makes this layer incapable, not erroneous.
func (c *emailChannel) Accepts(req *domain.Request) bool {
	return emailPattern.MatchString(strings.TrimSpace(req.Destination))
}

func (c *emailChannel) Deliver(ctx context.Context, req *domain.Request) (*domain.Outcome, error) {
	subject := req.Subject
	if subject == "" {
		subject = "Notification"
	}
	body := fmt.Sprintf("Subject: %s\n\n%s", subject, req.Body)

	c.logger.Info("email transmitted",
		"server", fmt.Sprintf("%s:%d", c.cfg.SMTPHost, c.cfg.SMTPPort),
		"from", c.cfg.Sender,
		"to", req.Destination,
		"subject", subject,
		"priority", req.Priority,
	)

	latency := c.cfg.StandardLatency
	if req.Priority.Immediate() {
		latency = c.cfg.ImmediateLatency
	}
	if err := c.env.Sleep(ctx, latency); err != nil {
		return nil, fmt.Errorf("email transmission interrupted: %w", err)
	}

	return domain.SentOutcome(TagEmail, req.Destination, body, c.env.Clock.Now()), nil
}
