package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

func TestWebSocketClient_ShouldReceive(t *testing.T) {
	outcome := &domain.Outcome{Channel: "SMS", Status: domain.StatusPending}

	tests := []struct {
		name   string
		filter *ClientFilter
		want   bool
	}{
		{"no filter receives all", nil, true},
		{"empty filter receives all", &ClientFilter{}, true},
		{"channel match", &ClientFilter{Channels: []string{"SMS"}}, true},
		{"channel mismatch", &ClientFilter{Channels: []string{"EMAIL"}}, false},
		{"status match", &ClientFilter{Statuses: []domain.Status{domain.StatusPending}}, true},
		{"status mismatch", &ClientFilter{Statuses: []domain.Status{domain.StatusSent}}, false},
		{
			"union: channel matches even though status does not",
			&ClientFilter{Channels: []string{"SMS"}, Statuses: []domain.Status{domain.StatusSent}},
			true,
		},
		{
			"union: status matches even though channel does not",
			&ClientFilter{Channels: []string{"EMAIL"}, Statuses: []domain.Status{domain.StatusPending}},
			true,
		},
		{
			"neither list matches",
			&ClientFilter{Channels: []string{"EMAIL"}, Statuses: []domain.Status{domain.StatusSent}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &WebSocketClient{filter: tt.filter}
			assert.Equal(t, tt.want, c.shouldReceive(outcome))
		})
	}
}
