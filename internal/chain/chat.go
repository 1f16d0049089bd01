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

// TagChat identifies the chat channel handler.
const TagChat = "CHAT"

var (
	chatUserPattern    = regexp.MustCompile(`^@[a-zA-Z0-9._-]+$`)
	chatChannelPattern = regexp.MustCompile(`^#[a-zA-Z0-9_-]+$`)
)

// ChatConfig configures the simulated chat workspace transport.
type ChatConfig struct {
	WorkspaceURL string
	BotName      string
	Latency      time.Duration
}

type chatChannel struct {
	cfg    ChatConfig
	env    Env
	logger *slog.Logger
}

// NewChat creates a chat handler wrapping inner.
func NewChat(inner domain.Handler, cfg ChatConfig, env Env, logger *slog.Logger) *Link {
	if cfg.WorkspaceURL == "" {
		cfg.WorkspaceURL = "https://workspace.example.com"
	}
	if cfg.BotName == "" {
		cfg.BotName = "dispatch-bot"
	}
	if cfg.Latency == 0 {
		cfg.Latency = 75 * time.Millisecond
	}
	env = env.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return newLink(&chatChannel{cfg: cfg, env: env, logger: logger}, inner, env, logger)
}

func (c *chatChannel) Tag() string { return TagChat }

// Accepts matches either a "#channel" or an "@user" destination.
func (c *chatChannel) Accepts(req *domain.Request) bool {
	dest := strings.TrimSpace(req.Destination)
	return chatChannelPattern.MatchString(dest) || chatUserPattern.MatchString(dest)
}

func (c *chatChannel) Deliver(ctx context.Context, req *domain.Request) (*domain.Outcome, error) {
	body := formatChatBody(req)

	target := "direct message"
	if strings.HasPrefix(req.Destination, "#") {
		target = "channel"
	}

	c.logger.Info("chat message transmitted",
		"workspace", c.cfg.WorkspaceURL,
		"bot", c.cfg.BotName,
		"target", target,
		"to", req.Destination,
		"priority", req.Priority,
	)

	if err := c.env.Sleep(ctx, c.cfg.Latency); err != nil {
		return nil, fmt.Errorf("chat transmission interrupted: %w", err)
	}

	return domain.SentOutcome(TagChat, req.Destination, body, c.env.Clock.Now()), nil
}

// formatChatBody prepends priority markup and appends sender attribution
// for non-system senders.
func formatChatBody(req *domain.Request) string {
	var b strings.Builder

	switch req.Priority {
	case domain.PriorityUrgent:
		b.WriteString("🚨 *URGENT* 🚨\n")
	case domain.PriorityHigh:
		b.WriteString("⚡ *HIGH PRIORITY* ⚡\n")
	case domain.PriorityLow:
		b.WriteString("ℹ️ ")
	}

	if req.Subject != "" {
		b.WriteString("*")
		b.WriteString(req.Subject)
		b.WriteString("*\n")
	}

	b.WriteString(req.Body)

	if req.Sender != "" && req.Sender != domain.DefaultSender {
		b.WriteString("\n_Sent by: ")
		b.WriteString(req.Sender)
		b.WriteString("_")
	}

	return b.String()
}
