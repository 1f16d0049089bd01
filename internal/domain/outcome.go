package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of a single delivery attempt.
type Status string

const (
	StatusSent      Status = "sent"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSent, StatusPending, StatusFailed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsFinal reports whether the status is terminal for one attempt. Pending
// is the only non-terminal state: the carrier may still confirm it.
func (s Status) IsFinal() bool {
	return s == StatusSent || s == StatusDelivered || s == StatusFailed || s == StatusCancelled
}

// IsSuccess reports whether the status represents a successful delivery.
func (s Status) IsSuccess() bool {
	return s == StatusSent || s == StatusDelivered
}

// Outcome is the result of one handler's delivery attempt. It is never
// mutated after construction; each handler produces a fresh one per request
// and exactly one outcome reaches the outermost caller.
//
// Invariant: Succeeded is true iff Status.IsSuccess().
type Outcome struct {
	ID          string    `json:"id"`
	Succeeded   bool      `json:"succeeded"`
	Status      Status    `json:"status"`
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Body        string    `json:"body"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOutcomeID returns a process-unique outcome ID prefixed with the
// producing channel's tag, e.g. "EMAIL-9f1c...".
func NewOutcomeID(channel string) string {
	return channel + "-" + uuid.NewString()
}

// SentOutcome builds a successful outcome for a completed transmission.
func SentOutcome(channel, destination, body string, at time.Time) *Outcome {
	return &Outcome{
		ID:          NewOutcomeID(channel),
		Succeeded:   true,
		Status:      StatusSent,
		Channel:     channel,
		Destination: destination,
		Body:        body,
		Timestamp:   at,
	}
}

// PendingOutcome builds an outcome for a transmission accepted but not yet
// confirmed by the carrier. Pending does not count as success.
func PendingOutcome(channel, destination, body string, at time.Time) *Outcome {
	return &Outcome{
		ID:          NewOutcomeID(channel),
		Succeeded:   false,
		Status:      StatusPending,
		Channel:     channel,
		Destination: destination,
		Body:        body,
		Timestamp:   at,
	}
}

// FailedOutcome builds an outcome for a failed transmission attempt.
func FailedOutcome(channel, destination, body, detail string, at time.Time) *Outcome {
	return &Outcome{
		ID:          NewOutcomeID(channel),
		Succeeded:   false,
		Status:      StatusFailed,
		Channel:     channel,
		Destination: destination,
		Body:        body,
		ErrorDetail: detail,
		Timestamp:   at,
	}
}
