package domain

import "time"

// DefaultSender identifies requests originated by the system itself.
// Channels may render sender attribution only for non-system senders.
const DefaultSender = "system"

// Priority orders notification urgency: low < normal < high < urgent.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Level returns the numeric rank of the priority (higher = more urgent).
func (p Priority) Level() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityNormal:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 2 // default to normal
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Immediate reports whether the priority calls for expedited transmission.
func (p Priority) Immediate() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// Request describes a single notification attempt. It is constructed once
// per dispatch and consumed read-only by every handler in the chain; no
// handler may mutate it.
type Request struct {
	Destination string            `json:"destination"`
	Body        string            `json:"body"`
	Subject     string            `json:"subject,omitempty"`
	Sender      string            `json:"sender"`
	Priority    Priority          `json:"priority"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// NewRequest creates a request with system defaults: the system sender and
// normal priority.
func NewRequest(destination, body string) *Request {
	return &Request{
		Destination: destination,
		Body:        body,
		Sender:      DefaultSender,
		Priority:    PriorityNormal,
	}
}

// Scheduled reports whether the request is deferred: a scheduled time is
// set and still lies in the future relative to now.
func (r *Request) Scheduled(now time.Time) bool {
	return r.ScheduledAt != nil && r.ScheduledAt.After(now)
}

// Attribute returns the free-form attribute for key, or "" when unset.
func (r *Request) Attribute(key string) string {
	return r.Attributes[key]
}
