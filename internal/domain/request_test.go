package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriority_Level(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		want     int
	}{
		{"low", PriorityLow, 1},
		{"normal", PriorityNormal, 2},
		{"high", PriorityHigh, 3},
		{"urgent", PriorityUrgent, 4},
		{"invalid defaults to normal", Priority("invalid"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.Level())
		})
	}
}

func TestPriority_Ordering(t *testing.T) {
	assert.Less(t, PriorityLow.Level(), PriorityNormal.Level())
	assert.Less(t, PriorityNormal.Level(), PriorityHigh.Level())
	assert.Less(t, PriorityHigh.Level(), PriorityUrgent.Level())
}

func TestPriority_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		want     bool
	}{
		{"valid low", PriorityLow, true},
		{"valid normal", PriorityNormal, true},
		{"valid high", PriorityHigh, true},
		{"valid urgent", PriorityUrgent, true},
		{"invalid priority", Priority("asap"), false},
		{"empty priority", Priority(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.IsValid())
		})
	}
}

func TestPriority_Immediate(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		want     bool
	}{
		{"low is not immediate", PriorityLow, false},
		{"normal is not immediate", PriorityNormal, false},
		{"high is immediate", PriorityHigh, true},
		{"urgent is immediate", PriorityUrgent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.Immediate())
		})
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("user@example.com", "Hello")

	assert.Equal(t, "user@example.com", req.Destination)
	assert.Equal(t, "Hello", req.Body)
	assert.Equal(t, DefaultSender, req.Sender)
	assert.Equal(t, PriorityNormal, req.Priority)
	assert.Nil(t, req.ScheduledAt)
	assert.Empty(t, req.Subject)
}

func TestRequest_Scheduled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		scheduledAt *time.Time
		want        bool
	}{
		{"no scheduled time", nil, false},
		{"scheduled in the past", &past, false},
		{"scheduled in the future", &future, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest("user@example.com", "Hello")
			req.ScheduledAt = tt.scheduledAt
			assert.Equal(t, tt.want, req.Scheduled(now))
		})
	}
}

func TestRequest_Attribute(t *testing.T) {
	req := NewRequest("+15551234567", "Hi")
	assert.Empty(t, req.Attribute("campaign"))

	req.Attributes = map[string]string{"campaign": "launch"}
	assert.Equal(t, "launch", req.Attribute("campaign"))
	assert.Empty(t, req.Attribute("missing"))
}
