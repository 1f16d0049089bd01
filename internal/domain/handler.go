package domain

import "context"

// Handler is the capability contract shared by every layer of a dispatch
// chain, concrete channels and the terminal recorder alike.
type Handler interface {
	// Send attempts delivery and always returns exactly one outcome.
	// Failures are reported through the outcome, never as an error;
	// a handler must not let a failure at its own layer stop delegation
	// to the handler it wraps.
	Send(ctx context.Context, req *Request) *Outcome

	// CanHandle reports whether this handler, or anything it wraps,
	// accepts the request's destination. It is a pure predicate with no
	// side effects, usable to probe a chain without dispatching.
	CanHandle(req *Request) bool

	// Channels returns the chain's channel tags, outermost first,
	// joined by " + ".
	Channels() string
}
