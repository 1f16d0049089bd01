// Package chain implements the notification dispatch chain: an ordered
// sequence of channel handlers, each validating whether it can act on a
// request, attempting delivery, and forwarding the request to the handler
// it wraps regardless of its own result.
package chain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

// channel is the per-medium behavior a Link orchestrates: a tag, a pure
// acceptance predicate, and the transmission itself.
type channel interface {
	Tag() string
	Accepts(req *domain.Request) bool
	Deliver(ctx context.Context, req *domain.Request) (*domain.Outcome, error)
}

// Link wraps exactly one inner handler and runs the shared dispatch
// sequence for a concrete channel: validate, attempt, delegate, reconcile.
// Every concrete channel handler in this package is a Link around its
// channel behavior. The inner handler is set at construction and never
// re-wrapped.
type Link struct {
	ch     channel
	inner  domain.Handler
	clock  Clock
	logger *slog.Logger
}

func newLink(ch channel, inner domain.Handler, env Env, logger *slog.Logger) *Link {
	if inner == nil {
		// Misconfiguration, not a runtime condition: fail fast.
		panic(fmt.Sprintf("chain: %s link constructed without a wrapped handler", ch.Tag()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{ch: ch, inner: inner, clock: env.Clock, logger: logger}
}

// Send runs this layer's attempt and always delegates to the wrapped
// handler afterwards, whatever the attempt produced. Reconciliation is
// "best result wins, prefer outermost": the outer outcome is returned iff
// it succeeded, otherwise the inner one. A successful inner delivery can
// therefore mask a failed outer one, but never the reverse.
func (l *Link) Send(ctx context.Context, req *domain.Request) *domain.Outcome {
	if !l.ch.Accepts(req) {
		l.logger.Debug("destination not accepted, passing through",
			"channel", l.ch.Tag(),
			"destination", req.Destination,
		)
		return l.inner.Send(ctx, req)
	}

	here := l.attempt(ctx, req)

	// The wrapped handler always gets its chance to fire, even when this
	// layer already succeeded.
	innerOutcome := l.inner.Send(ctx, req)

	if here.Succeeded {
		return here
	}
	return innerOutcome
}

// attempt runs the channel transmission, converting errors and panics into
// a failed outcome for this layer so that delegation still happens.
func (l *Link) attempt(ctx context.Context, req *domain.Request) (out *domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("delivery panicked",
				"channel", l.ch.Tag(),
				"destination", req.Destination,
				"panic", r,
			)
			out = domain.FailedOutcome(l.ch.Tag(), req.Destination, req.Body,
				fmt.Sprintf("delivery panicked: %v", r), l.clock.Now())
		}
	}()

	outcome, err := l.ch.Deliver(ctx, req)
	if err != nil {
		l.logger.Warn("delivery failed",
			"channel", l.ch.Tag(),
			"destination", req.Destination,
			"error", err,
		)
		return domain.FailedOutcome(l.ch.Tag(), req.Destination, req.Body, err.Error(), l.clock.Now())
	}
	return outcome
}

// CanHandle reports capability across the remaining chain: this layer's
// own predicate OR anything the wrapped handler accepts.
func (l *Link) CanHandle(req *domain.Request) bool {
	return l.ch.Accepts(req) || l.inner.CanHandle(req)
}

// Channels returns this layer's tag followed by the wrapped handler's
// tags, joined by " + ".
func (l *Link) Channels() string {
	return l.ch.Tag() + " + " + l.inner.Channels()
}
